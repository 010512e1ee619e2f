// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Free-text form fields (customer names, brands) end up in invoices, PDFs,
// and WhatsApp messages; strip any markup on the way in.
var strict = bluemonday.StrictPolicy()

// Text removes all HTML from a form value and trims surrounding space.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
