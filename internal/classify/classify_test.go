package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lexfield/docpipe/constants"
)

func TestClassifyRequiresTwoKeywords(t *testing.T) {
	c := NewKeywordClassifier(nil, nil)

	// one invoice keyword only -> general
	if got := c.Classify("please find attached our invoice for services"); got != constants.General {
		t.Errorf("single keyword classified as %q, want %q", got, constants.General)
	}
	// two invoice keywords -> invoice
	if got := c.Classify("invoice no 42, amount due within 30 days"); got != constants.Invoice {
		t.Errorf("two keywords classified as %q, want %q", got, constants.Invoice)
	}
}

func TestClassifyFirstCategoryInTableOrderWins(t *testing.T) {
	rules := []TypeRule{
		{Type: constants.Contract, Keywords: []string{"alpha", "beta"}},
		{Type: constants.Invoice, Keywords: []string{"alpha", "beta"}},
	}
	c := NewKeywordClassifier(rules, nil)
	if got := c.Classify("alpha beta"); got != constants.Contract {
		t.Errorf("got %q, want first matching category %q", got, constants.Contract)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := NewKeywordClassifier(nil, nil)
	text := "THE PARTIES AGREE that this AGREEMENT shall be binding"
	if got := c.Classify(text); got != constants.Contract {
		t.Errorf("got %q, want %q", got, constants.Contract)
	}
}

func TestExtractEntities(t *testing.T) {
	x := NewRegexEntityExtractor()
	text := "In the matter of Claim No: HQ19X01234 between Jane Doe (Claimant) and " +
		"the Defendant, Acme Holdings, regarding section 21(1) of the " +
		"Housing Act 1988, heard on 12/03/2021 and again on 4 June 2021."

	ents := x.Extract(text)

	if len(ents.CaseNumbers) == 0 || ents.CaseNumbers[0] != "HQ19X01234" {
		t.Errorf("case numbers = %v, want HQ19X01234 first", ents.CaseNumbers)
	}
	if len(ents.Parties) < 2 {
		t.Errorf("parties = %v, want both claimant and defendant names", ents.Parties)
	}
	if len(ents.Dates) != 2 {
		t.Errorf("dates = %v, want 2 entries", ents.Dates)
	}
	if len(ents.References) < 2 {
		t.Errorf("references = %v, want statute section and act name", ents.References)
	}
}

func TestExtractEntitiesEmptyText(t *testing.T) {
	ents := NewRegexEntityExtractor().Extract("")
	if len(ents.CaseNumbers)+len(ents.Parties)+len(ents.Dates)+len(ents.References) != 0 {
		t.Errorf("expected all-empty entities, got %+v", ents)
	}
}

func TestQualityBoundaries(t *testing.T) {
	cases := []struct {
		confidence float64
		length     int
		want       constants.Quality
	}{
		{86, 1001, constants.QualityHigh},
		{85, 1000, constants.QualityMedium}, // boundary is strict >
		{86, 1000, constants.QualityMedium},
		{85, 1001, constants.QualityMedium},
		{71, 501, constants.QualityMedium},
		{70, 500, constants.QualityLow},
		{99, 50, constants.QualityLow},
		{0, 10000, constants.QualityLow},
	}
	for _, tc := range cases {
		if got := Score(tc.confidence, tc.length); got != tc.want {
			t.Errorf("Score(%v, %d) = %q, want %q", tc.confidence, tc.length, got, tc.want)
		}
	}
}

func TestLoadRulesValidatesSchema(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(good, []byte(`[{"type":"lease","keywords":["landlord","tenant","demise"]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(good)
	if err != nil {
		t.Fatalf("LoadRules(valid) error: %v", err)
	}
	if len(rules) != 1 || rules[0].Type != "lease" {
		t.Errorf("unexpected rules: %+v", rules)
	}

	bad := filepath.Join(dir, "bad.json")
	// single keyword cannot reach the match threshold
	if err := os.WriteFile(bad, []byte(`[{"type":"lease","keywords":["landlord"]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(bad); err == nil {
		t.Error("LoadRules accepted a rule below the keyword minimum")
	}
}
