package l10n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if tbl.Fallback != "en" {
		t.Errorf("fallback = %q", tbl.Fallback)
	}
	for _, lang := range []string{"en", "pt", "sr", "ja"} {
		e := tbl.Entry(lang)
		if e.Disclaimer == "" || e.EditLabel == "" {
			t.Errorf("incomplete entry for %q: %+v", lang, e)
		}
	}
}

func TestEntryFallsBack(t *testing.T) {
	tbl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := tbl.Entry("zz"); got != tbl.Entries["en"] {
		t.Errorf("unknown lang did not fall back: %+v", got)
	}
}

func TestDisclaimerBox(t *testing.T) {
	tbl, _ := Default()
	box := tbl.Disclaimer("pt", "Core Values")

	if !strings.HasPrefix(box, `{| class="translation-disclaimer"`) {
		t.Errorf("box header: %q", box)
	}
	if !strings.HasSuffix(box, "|}") {
		t.Errorf("box footer: %q", box)
	}
	if !strings.Contains(box, "traduzida automaticamente") {
		t.Errorf("missing localized disclaimer: %q", box)
	}
	if !strings.Contains(box, "[[Special:Translate/page-Core Values|") {
		t.Errorf("missing edit link: %q", box)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strings.yaml")
	data := "fallback: en\nentries:\n  en:\n    disclaimer: \"Custom note.\"\n    edit_label: \"Fix\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tbl.Entry("en").Disclaimer != "Custom note." {
		t.Errorf("override not applied: %+v", tbl.Entry("en"))
	}
}

func TestParseRejectsMissingFallback(t *testing.T) {
	if _, err := parse([]byte("entries:\n  en:\n    disclaimer: x\n")); err == nil {
		t.Error("missing fallback accepted")
	}
	if _, err := parse([]byte("fallback: fr\nentries:\n  en:\n    disclaimer: x\n")); err == nil {
		t.Error("fallback without entry accepted")
	}
}
