// Package l10n holds the translated UI strings the synchronizer itself
// inserts into pages, chiefly the machine-translation disclaimer box. A
// default table ships embedded; deployments can override it with a YAML
// file.
package l10n

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yaml
var defaultStrings []byte

// Entry is the string set for one language.
type Entry struct {
	Disclaimer string `yaml:"disclaimer"`
	EditLabel  string `yaml:"edit_label"`
}

// Table maps language codes to their string sets, with a fallback language
// for codes that have none.
type Table struct {
	Fallback string           `yaml:"fallback"`
	Entries  map[string]Entry `yaml:"entries"`
}

// Default returns the embedded string table.
func Default() (*Table, error) {
	return parse(defaultStrings)
}

// LoadFile reads a string table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strings file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse strings: %w", err)
	}
	if t.Fallback == "" {
		return nil, fmt.Errorf("strings table has no fallback language")
	}
	if _, ok := t.Entries[t.Fallback]; !ok {
		return nil, fmt.Errorf("strings table has no entry for fallback language %q", t.Fallback)
	}
	return &t, nil
}

// Entry returns the string set for lang, falling back to the table's
// fallback language.
func (t *Table) Entry(lang string) Entry {
	if e, ok := t.Entries[lang]; ok {
		return e
	}
	return t.Entries[t.Fallback]
}

// Disclaimer builds the machine-translation disclaimer box for a document
// in lang, with a link into the translation editor.
func (t *Table) Disclaimer(lang, document string) string {
	e := t.Entry(lang)
	return fmt.Sprintf(
		"{| class=\"translation-disclaimer\"\n| %s [[Special:Translate/page-%s|%s]]\n|}",
		e.Disclaimer, document, e.EditLabel)
}
