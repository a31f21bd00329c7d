package pipeline

import "strings"

// englishMarkers are high-frequency function words. Counting distinct hits is
// enough to separate English legal text from everything else.
var englishMarkers = []string{
	" the ", " and ", " of ", " to ", " in ", " that ", " is ", " for ",
	" with ", " shall ", " this ", " be ",
}

// detectLanguage is a cheap marker-word check. It reports "en" or "unknown";
// the pipeline has no multi-language requirement beyond flagging non-English
// input for manual review.
func detectLanguage(text string) string {
	sample := strings.ToLower(text)
	if len(sample) > 4000 {
		sample = sample[:4000]
	}
	sample = " " + sample + " "

	hits := 0
	for _, marker := range englishMarkers {
		if strings.Contains(sample, marker) {
			hits++
		}
	}
	if hits >= 4 {
		return "en"
	}
	return "unknown"
}
