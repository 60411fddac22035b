// =============================================================================
// PAXML Exporter - Time Code Vocabulary
// =============================================================================
//
// The vocabulary is the pair of tables the export depends on:
//   - the allow-list of wire codes accepted by the payroll system
//   - the mapping from internal codes (numeric codes, leave type names) to
//     wire codes
//
// A Vocabulary is immutable once built. It is created once at process start,
// validated, and then shared by every export request.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ErrInvalidVocabulary marks a malformed code table. It is a fatal
// configuration error, never a per-request one.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// SchemaVersion is the consumer schema the built-in vocabulary mirrors.
const SchemaVersion = "2.2"

// Vocabulary holds the allow-list and the internal-to-wire mapping.
type Vocabulary struct {
	version string
	codes   []string
	allowed map[string]struct{}
	mapping map[string]string
}

// vocabularyFile is the YAML shape of a vocabulary override.
type vocabularyFile struct {
	Version   string            `yaml:"version"`
	AllowList []string          `yaml:"allow_list"`
	Mapping   map[string]string `yaml:"mapping"`
}

// =============================================================================
// BUILT-IN TABLES
// =============================================================================

var defaultAllowList = []string{
	"ARB", "ASK", "ATF", "FAC", "FLX", "FPE", "HAV", "KOM", "KON", "MER",
	"MIL", "NAR", "PEM", "PER", "RES", "SEM", "SJK", "SMB", "SVE", "TJL",
	"UTB", "VAB",
	"OB1", "OB2", "OB3", "OB4", "OB5",
	"ÖT1", "ÖT2", "ÖT3", "ÖT4", "ÖT5",
	"FR1", "FR2", "FR3", "FR4", "FR5", "FR6", "FR7", "FR8", "FR9",

	// Numeric overtime tiers, accepted verbatim.
	"410", "411", "412", "413", "414",
}

var defaultMapping = map[string]string{
	// Numeric source codes.
	"100": "SEM",
	"200": "TJL",
	"210": "FPE",
	"220": "VAB",
	"230": "NAR",
	"240": "PEM",
	"250": "KOM",
	"260": "UTB",
	"270": "FAC",
	"280": "MIL",
	"300": "SJK",
	"310": "ASK",
	"320": "SMB",
	"330": "HAV",
	"400": "MER",
	"500": "OB1",
	"501": "OB2",
	"502": "OB3",
	"503": "OB4",
	"504": "OB5",
	"600": "RES",
	"700": "FR1",
	"701": "FR2",
	"702": "FR3",
	"703": "FR4",
	"704": "FR5",
	"705": "FR6",
	"706": "FR7",
	"707": "FR8",
	"708": "FR9",

	// Leave type names.
	"vacation":         "SEM",
	"sick":             "SJK",
	"vab":              "VAB",
	"parental":         "FPE",
	"leave_of_absence": "TJL",
	"comp_leave":       "KOM",
	"care_of_relative": "NAR",
	"education":        "UTB",
	"military":         "MIL",
	"union":            "FAC",
	"permission":       "PEM",
	"overtime":         "ÖT1",
	"flex":             "FLX",
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// DefaultVocabulary returns the built-in vocabulary for schema version 2.2.
// The built-in tables are covered by tests, so a failure here is a programming
// error.
func DefaultVocabulary() *Vocabulary {
	vocabulary, err := NewVocabulary(SchemaVersion, defaultAllowList, defaultMapping)
	if err != nil {
		panic(err)
	}
	return vocabulary
}

// NewVocabulary builds and validates a vocabulary. All codes are NFC
// normalised so a decomposed "Ö" compares equal to the precomposed one.
func NewVocabulary(version string, allowList []string, mapping map[string]string) (*Vocabulary, error) {
	vocabulary := &Vocabulary{
		version: version,
		allowed: make(map[string]struct{}, len(allowList)),
		mapping: make(map[string]string, len(mapping)),
	}

	for _, code := range allowList {
		code = normalizeCode(code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty code in allow-list", ErrInvalidVocabulary)
		}
		if _, exists := vocabulary.allowed[code]; exists {
			return nil, fmt.Errorf("%w: duplicate allow-list code %q", ErrInvalidVocabulary, code)
		}
		vocabulary.allowed[code] = struct{}{}
		vocabulary.codes = append(vocabulary.codes, code)
	}

	for key, value := range mapping {
		key = normalizeCode(key)
		if key == "" {
			return nil, fmt.Errorf("%w: empty mapping key", ErrInvalidVocabulary)
		}
		if _, exists := vocabulary.mapping[key]; exists {
			return nil, fmt.Errorf("%w: duplicate mapping key %q", ErrInvalidVocabulary, key)
		}
		vocabulary.mapping[key] = normalizeCode(value)
	}

	if err := vocabulary.Validate(); err != nil {
		return nil, err
	}
	return vocabulary, nil
}

// LoadVocabulary reads a vocabulary override file.
//
// PARAMETERS:
//   - path: YAML file with "version", "allow_list" and "mapping".
//
// RETURNS:
//   - The validated vocabulary.
//   - An error wrapping ErrInvalidVocabulary for malformed tables,
//     including duplicate mapping keys.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	// yaml.v3 refuses duplicate mapping keys while decoding.
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}
	if file.Version == "" {
		file.Version = SchemaVersion
	}
	return NewVocabulary(file.Version, file.AllowList, file.Mapping)
}

// ResolveVocabulary returns the override vocabulary when one is configured,
// and the built-in one otherwise.
func (c *MainConfig) ResolveVocabulary() (*Vocabulary, error) {
	if c.VocabularyFile == "" {
		return DefaultVocabulary(), nil
	}
	return LoadVocabulary(c.VocabularyFile)
}

// =============================================================================
// QUERIES
// =============================================================================

// Validate checks the tables: a non-empty allow-list and every mapped value a
// member of it.
func (v *Vocabulary) Validate() error {
	if v == nil || len(v.allowed) == 0 {
		return fmt.Errorf("%w: allow-list is empty", ErrInvalidVocabulary)
	}
	keys := make([]string, 0, len(v.mapping))
	for key := range v.mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := v.mapping[key]
		if _, ok := v.allowed[value]; !ok {
			return fmt.Errorf("%w: %q maps to %q which is not in the allow-list", ErrInvalidVocabulary, key, value)
		}
	}
	return nil
}

// Version returns the schema version the tables mirror.
func (v *Vocabulary) Version() string {
	return v.version
}

// Lookup returns the wire code mapped to an internal code.
func (v *Vocabulary) Lookup(code string) (string, bool) {
	mapped, ok := v.mapping[normalizeCode(code)]
	return mapped, ok
}

// Allowed reports whether code is a member of the wire allow-list.
func (v *Vocabulary) Allowed(code string) bool {
	_, ok := v.allowed[normalizeCode(code)]
	return ok
}

// Codes returns a copy of the allow-list in declaration order.
func (v *Vocabulary) Codes() []string {
	return append([]string(nil), v.codes...)
}

// MappingSize returns the number of mapping entries.
func (v *Vocabulary) MappingSize() int {
	return len(v.mapping)
}

func normalizeCode(code string) string {
	return norm.NFC.String(strings.TrimSpace(code))
}
