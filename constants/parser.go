package constants

// ParserID identifies which backend produced an extraction outcome.
// Exactly one of these ends up in the X-Parsed-By metadata of every
// successful result.
type ParserID string

const (
	ParserGeneric      ParserID = "generic"
	ParserPDFText      ParserID = "pdf-text"
	ParserPDFOCR       ParserID = "pdf-ocr"
	ParserPDFOCRLegacy ParserID = "pdf-ocr-single-page"
)
