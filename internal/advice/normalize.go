package advice

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCapabilityName produces the lookup key for a capability name:
// NFC-normalized, case-folded, inner whitespace collapsed to single spaces.
// Editors touch the matrix source by hand; without NFC at the key boundary
// a composed and a decomposed spelling of the same name would load as two
// capabilities and split the matrix.
func NormalizeCapabilityName(name string) string {
	folded := strings.ToLower(norm.NFC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}
