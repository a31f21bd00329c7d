package constants

// DocumentType is the coarse category inferred by keyword voting.
type DocumentType string

const (
	Contract       DocumentType = "contract"
	Correspondence DocumentType = "correspondence"
	CourtFiling    DocumentType = "court_filing"
	Evidence       DocumentType = "evidence"
	Invoice        DocumentType = "invoice"
	LegalOpinion   DocumentType = "legal_opinion"
	General        DocumentType = "general"
)

var allDocumentTypes = []DocumentType{
	Contract,
	Correspondence,
	CourtFiling,
	Evidence,
	Invoice,
	LegalOpinion,
	General,
}

// DocumentTypes returns the known categories in table order.
func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}
