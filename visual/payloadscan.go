package visual

import (
	"encoding/base64"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ScanPayload checks whether any denylist term appears literally in the
// image's base64 transport encoding. It looks for each term's case
// variants both as plain substrings of the encoded payload and in their
// own base64-encoded form.
//
// This is deliberately crude and high-recall: some payload encodings
// happen to embed recognizable substrings, and a false positive here is
// only the entry point to the warn ladder, not an automatic removal.
// Returns the matched term.
func ScanPayload(data []byte, terms []string) (string, bool) {
	if len(data) == 0 || len(terms) == 0 {
		return "", false
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	title := cases.Title(language.Und)
	for _, term := range terms {
		if term == "" {
			continue
		}
		for _, variant := range []string{term, strings.ToUpper(term), title.String(term)} {
			if strings.Contains(encoded, variant) {
				return term, true
			}
			if strings.Contains(encoded, base64.StdEncoding.EncodeToString([]byte(variant))) {
				return term, true
			}
		}
	}
	return "", false
}
