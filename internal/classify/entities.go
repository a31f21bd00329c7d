package classify

import (
	"regexp"
	"strings"
)

// Entities holds the structured references pulled out of a legal document.
// Every slice may be empty; extraction never fails.
type Entities struct {
	CaseNumbers []string `json:"caseNumbers"`
	Parties     []string `json:"parties"`
	Dates       []string `json:"dates"`
	References  []string `json:"references"`
}

// EntityExtractor pulls structured references from normalized text.
// Implementations must be safe for concurrent use.
type EntityExtractor interface {
	Extract(text string) Entities
}

var (
	reCaseLabel = regexp.MustCompile(`(?i)\b(?:case|claim)\s+no\.?\s*[:#]?\s*([A-Z0-9][A-Z0-9/-]{2,})`)
	reCaseToken = regexp.MustCompile(`\b[A-Z]{1,4}\d{2}[A-Z]?\d{4,6}\b|\b\d{4}[-/][A-Z]{2,4}[-/]\d{2,6}\b`)

	reStatute = regexp.MustCompile(`(?i)\b(?:section|ss?\.|§)\s*\d+[A-Za-z]?(?:\(\d+\))?`)
	reActName = regexp.MustCompile(`\b[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,4}\s+Act\s+\d{4}\b`)

	reDateNumeric = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	reDateWritten = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)

	// "Claimant: Jane Doe" / "the Defendant, Acme Holdings Ltd"
	rePartyAfterRole = regexp.MustCompile(`(?i)\b(?:claimant|defendant|appellant|respondent|plaintiff)\s*[,:]?\s+((?:[A-Z][A-Za-z'’-]+(?:\s+|$)){1,4})`)
	// "Jane Doe (Claimant)"
	rePartyBeforeRole = regexp.MustCompile(`((?:[A-Z][A-Za-z'’-]+\s+){1,4})\((?i:claimant|defendant|appellant|respondent|plaintiff)\)`)
)

// RegexEntityExtractor is the default rule-engine implementation. Malformed
// matches are simply omitted; it never returns an error.
type RegexEntityExtractor struct{}

func NewRegexEntityExtractor() *RegexEntityExtractor {
	return &RegexEntityExtractor{}
}

func (x *RegexEntityExtractor) Extract(text string) Entities {
	var ents Entities

	for _, m := range reCaseLabel.FindAllStringSubmatch(text, -1) {
		ents.CaseNumbers = appendUnique(ents.CaseNumbers, strings.TrimSpace(m[1]))
	}
	for _, m := range reCaseToken.FindAllString(text, -1) {
		ents.CaseNumbers = appendUnique(ents.CaseNumbers, m)
	}

	for _, m := range rePartyAfterRole.FindAllStringSubmatch(text, -1) {
		ents.Parties = appendUnique(ents.Parties, cleanParty(m[1]))
	}
	for _, m := range rePartyBeforeRole.FindAllStringSubmatch(text, -1) {
		ents.Parties = appendUnique(ents.Parties, cleanParty(m[1]))
	}

	for _, m := range reDateNumeric.FindAllString(text, -1) {
		ents.Dates = appendUnique(ents.Dates, m)
	}
	for _, m := range reDateWritten.FindAllString(text, -1) {
		ents.Dates = appendUnique(ents.Dates, m)
	}

	for _, m := range reStatute.FindAllString(text, -1) {
		ents.References = appendUnique(ents.References, strings.TrimSpace(m))
	}
	for _, m := range reActName.FindAllString(text, -1) {
		ents.References = appendUnique(ents.References, m)
	}

	return ents
}

func cleanParty(s string) string {
	return strings.TrimSpace(s)
}

func appendUnique(dst []string, s string) []string {
	if s == "" {
		return dst
	}
	for _, existing := range dst {
		if strings.EqualFold(existing, s) {
			return dst
		}
	}
	return append(dst, s)
}
