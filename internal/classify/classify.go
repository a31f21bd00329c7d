package classify

import (
	"log/slog"
	"strings"

	"github.com/lexfield/docpipe/constants"
)

// Classifier infers a coarse document category from normalized text.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(text string) constants.DocumentType
}

// TypeRule pairs a category with its keyword set. A category is selected when
// at least MatchThreshold of its keywords appear in the text.
type TypeRule struct {
	Type     constants.DocumentType `json:"type"`
	Keywords []string               `json:"keywords"`
}

// MatchThreshold is the minimum number of distinct keyword hits for a
// category to win. One stray keyword is not a classification.
const MatchThreshold = 2

// KeywordClassifier is the default rule-table classifier: case-insensitive
// substring voting, first category in table order to reach the threshold wins.
type KeywordClassifier struct {
	rules  []TypeRule
	logger *slog.Logger
}

func NewKeywordClassifier(rules []TypeRule, logger *slog.Logger) *KeywordClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &KeywordClassifier{rules: rules, logger: logger}
}

// Classify returns the first category whose keyword hits reach the threshold,
// or constants.General when none qualifies.
func (c *KeywordClassifier) Classify(text string) constants.DocumentType {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		hits := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
				if hits >= MatchThreshold {
					break
				}
			}
		}
		if hits >= MatchThreshold {
			c.logger.Debug("document classified", "type", rule.Type, "keyword_hits", hits)
			return rule.Type
		}
	}
	return constants.General
}

// DefaultRules returns the built-in category table, in priority order.
func DefaultRules() []TypeRule {
	return []TypeRule{
		{Type: constants.Contract, Keywords: []string{
			"agreement", "hereinafter", "terms and conditions", "consideration",
			"executed as a deed", "the parties agree",
		}},
		{Type: constants.Correspondence, Keywords: []string{
			"dear", "yours sincerely", "yours faithfully", "we write to",
			"further to our letter",
		}},
		{Type: constants.CourtFiling, Keywords: []string{
			"claimant", "defendant", "claim no", "statement of case",
			"in the matter of", "particulars of claim",
		}},
		{Type: constants.Evidence, Keywords: []string{
			"exhibit", "witness statement", "sworn", "deposition",
			"annexed hereto", "i make this statement",
		}},
		{Type: constants.Invoice, Keywords: []string{
			"invoice", "amount due", "payment terms", "vat", "total due",
			"remittance",
		}},
		{Type: constants.LegalOpinion, Keywords: []string{
			"counsel", "in my opinion", "i am instructed", "advice",
			"merits of the claim",
		}},
	}
}
