package classify

import "github.com/lexfield/docpipe/constants"

// Score maps aggregate OCR confidence (0-100) and extracted text length to a
// quality tier. Thresholds are strictly greater-than.
func Score(confidence float64, textLength int) constants.Quality {
	switch {
	case confidence > 85 && textLength > 1000:
		return constants.QualityHigh
	case confidence > 70 && textLength > 500:
		return constants.QualityMedium
	default:
		return constants.QualityLow
	}
}
