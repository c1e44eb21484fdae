package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wikisync.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
wiki:
  api_url: https://wiki.example.org/api.php
  username: SyncBot
  password: hunter2
google:
  project: wiki-prod
  glossaries:
    pt: handbook-pt
database_url: postgres://localhost/wikisync
source_lang: en
target_langs: [pt, fr, sr]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Wiki.APIURL != "https://wiki.example.org/api.php" || cfg.Wiki.Username != "SyncBot" {
		t.Errorf("wiki config: %+v", cfg.Wiki)
	}
	if cfg.Google.Glossaries["pt"] != "handbook-pt" {
		t.Errorf("glossaries: %v", cfg.Google.Glossaries)
	}
	if len(cfg.TargetLangs) != 3 {
		t.Errorf("target_langs: %v", cfg.TargetLangs)
	}
	// Defaults fill unset fields.
	if cfg.Google.Location != "global" || cfg.MaxRetries != 3 || !cfg.Disclaimer {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.StrictMarkers) != 1 || cfg.StrictMarkers[0] != "{{Callout" {
		t.Errorf("strict_markers default: %v", cfg.StrictMarkers)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
wiki:
  api_url: https://wiki.example.org/api.php
source_lang: en
target_langs: [pt]
cache_path: from-file.db
`)
	t.Setenv("WIKISYNC_CACHE_PATH", "from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CachePath != "from-env.db" {
		t.Errorf("cache_path = %q, want env override", cfg.CachePath)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing api url",
			content: "source_lang: en\ntarget_langs: [pt]\n",
		},
		{
			name:    "no target langs",
			content: "wiki:\n  api_url: https://w/api.php\nsource_lang: en\n",
		},
		{
			name:    "source in targets",
			content: "wiki:\n  api_url: https://w/api.php\nsource_lang: en\ntarget_langs: [pt, en]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
