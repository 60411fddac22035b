// =============================================================================
// PAXML Exporter - Time Code Mapper
// =============================================================================
//
// The mapper translates the codes used inside the system (numeric deviation
// codes, leave type names) into the wire codes the payroll system accepts.
//
// RULES:
//   - Input is trimmed and NFC normalised before lookup.
//   - Leave type names match case-insensitively ("Sick" == "sick").
//   - A code without a mapping entry is returned as-is (after normalisation).
//     Codes that already belong to the wire vocabulary, such as "ÖT1" or
//     the numeric overtime tiers "410".."414", pass through this way. Anything else is caught later by the validator.
//
// The mapper holds no mutable state. One instance is shared by every request.
//
// =============================================================================

package codemap

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
)

// Mapper maps internal time codes to wire codes.
type Mapper struct {
	vocabulary *config.Vocabulary
}

// New returns a mapper over the given vocabulary. A nil vocabulary selects
// the built-in one.
func New(vocabulary *config.Vocabulary) *Mapper {
	if vocabulary == nil {
		vocabulary = config.DefaultVocabulary()
	}
	return &Mapper{vocabulary: vocabulary}
}

// Map returns the wire code for an internal code.
func (m *Mapper) Map(code string) string {
	code = norm.NFC.String(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if mapped, ok := m.vocabulary.Lookup(code); ok {
		return mapped
	}
	if mapped, ok := m.vocabulary.Lookup(strings.ToLower(code)); ok {
		return mapped
	}
	return code
}

// Allowed reports whether a wire code is accepted by the payroll system.
func (m *Mapper) Allowed(code string) bool {
	return m.vocabulary.Allowed(code)
}

// Vocabulary returns the tables the mapper reads.
func (m *Mapper) Vocabulary() *config.Vocabulary {
	return m.vocabulary
}
