package clients

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Normalize produces the matching key for a client name. Invoices link to
// clients by an explicit id, but the id is resolved from the free-text
// customer name at sale time, so matching must survive case and whitespace
// differences in any script.
func Normalize(name string) string {
	return folder.String(strings.Join(strings.Fields(name), " "))
}
