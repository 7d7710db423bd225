package parser

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/clearscan/doc-extractor/internal/common"
)

// pdfPreflight reads the PDF cross-reference via pdfcpu to obtain the page
// count and to surface encryption before any external tool runs. A
// password-protected document maps to common.ErrEncrypted so the final error
// string carries "document is encrypted".
func pdfPreflight(path string) (pages int, err error) {
	pages, err = api.PageCountFile(path)
	if err != nil {
		if isEncryptionErr(err) {
			return 0, common.ErrEncrypted
		}
		return 0, common.WrapError(err, "read pdf")
	}
	return pages, nil
}

func isEncryptionErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}
