package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCapabilityName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"case folds", "Query Store", "query store"},
		{"collapses inner whitespace", "Query   Store", "query store"},
		{"trims outer whitespace", "  OS Access \t", "os access"},
		// U+0065 U+0301 (e + combining acute) composes to U+00E9 under NFC.
		{"nfc composes combining marks", "Réplication", "réplication"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeCapabilityName(tc.input))
		})
	}
}
