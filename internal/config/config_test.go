package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMainConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.DSN != "paxml.db" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if len(cfg.Auth.ExportRoles) != 3 {
		t.Fatalf("expected default export roles, got %v", cfg.Auth.ExportRoles)
	}
	if cfg.Schedule.FullDayHours != 8 {
		t.Fatalf("expected default full day hours, got %.2f", cfg.Schedule.FullDayHours)
	}
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9000
database:
  driver: sqlite
  dsn: file.db
logging:
  level: warn
`)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/paxml")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Fatalf("expected port override, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "postgres://localhost/paxml" {
		t.Fatalf("expected database override, got %+v", cfg.Database)
	}
	if cfg.Auth.JWTSecret != "secret" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected auth/logging override, got %+v %+v", cfg.Auth, cfg.Logging)
	}
}

func TestLoadMainConfigRejectsInvalid(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "")

	cases := map[string]string{
		"driver":   "database:\n  driver: mongo\n",
		"format":   "logging:\n  format: xml\n",
		"schedule": "schedule:\n  full_day_hours: 30\n",
		"yaml":     "server: [\n",
	}
	for name, content := range cases {
		path := writeFile(t, "config.yaml", content)
		if _, err := LoadMainConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMainConfigRejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	if _, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for non-numeric SERVER_PORT")
	}
}

func TestDefaultVocabulary(t *testing.T) {
	vocabulary := DefaultVocabulary()
	if err := vocabulary.Validate(); err != nil {
		t.Fatalf("built-in vocabulary invalid: %v", err)
	}
	if vocabulary.Version() != "2.2" {
		t.Fatalf("expected version 2.2, got %s", vocabulary.Version())
	}

	cases := map[string]string{
		"100":      "SEM",
		"300":      "SJK",
		"504":      "OB5",
		"708":      "FR9",
		"sick":     "SJK",
		"overtime": "ÖT1",
		"flex":     "FLX",
	}
	for code, want := range cases {
		got, ok := vocabulary.Lookup(code)
		if !ok || got != want {
			t.Fatalf("Lookup(%q)=%q,%v want %q", code, got, ok, want)
		}
	}
	if len(vocabulary.Codes()) != 46 {
		t.Fatalf("expected 46 allow-list codes, got %d", len(vocabulary.Codes()))
	}
	if _, mapped := vocabulary.Lookup("412"); mapped || !vocabulary.Allowed("412") {
		t.Fatalf("overtime tier 412 must pass through unmapped")
	}
	if !vocabulary.Allowed("ÖT3") || vocabulary.Allowed("ZZZ") {
		t.Fatalf("unexpected allow-list membership")
	}
}

func TestVocabularyNormalisesDecomposedCodes(t *testing.T) {
	vocabulary := DefaultVocabulary()
	decomposed := "O\u0308T1"
	if !vocabulary.Allowed(decomposed) {
		t.Fatalf("expected decomposed ÖT1 to be allowed")
	}
}

func TestNewVocabularyRejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name    string
		allow   []string
		mapping map[string]string
	}{
		{"empty allow-list", nil, map[string]string{}},
		{"value outside allow-list", []string{"SEM"}, map[string]string{"100": "SJK"}},
		{"duplicate allow-list", []string{"SEM", "SEM"}, nil},
		{"duplicate key after trim", []string{"SEM"}, map[string]string{"100": "SEM", " 100 ": "SEM"}},
	}
	for _, tt := range cases {
		_, err := NewVocabulary("2.2", tt.allow, tt.mapping)
		if !errors.Is(err, ErrInvalidVocabulary) {
			t.Fatalf("%s: expected ErrInvalidVocabulary, got %v", tt.name, err)
		}
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := writeFile(t, "vocabulary.yaml", `
version: "2.2"
allow_list: [SEM, SJK, XTR]
mapping:
  "100": SEM
  extra: XTR
`)
	vocabulary, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := vocabulary.Lookup("extra"); got != "XTR" {
		t.Fatalf("expected XTR, got %q", got)
	}
}

func TestLoadVocabularyRejectsDuplicateKeys(t *testing.T) {
	path := writeFile(t, "vocabulary.yaml", `
allow_list: [SEM]
mapping:
  "100": SEM
  "100": SEM
`)
	if _, err := LoadVocabulary(path); !errors.Is(err, ErrInvalidVocabulary) {
		t.Fatalf("expected ErrInvalidVocabulary, got %v", err)
	}
}
