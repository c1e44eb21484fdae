package protect_test

import (
	"strings"
	"testing"

	"github.com/valpere/wikisync/internal/protect"
)

func TestSegment_GenericRoundTrip(t *testing.T) {
	cases := []string{
		"Intro <!--BOT_DISCLAIMER--> Tail",
		"Text with a template {{Callout|type=note|Nested {{Inner|x}} body}} after.",
		"__NOTOC__\nBody with <ref name=\"a\">Citation</ref> and <references />.",
		"Visit https://example.org/page?x=1 for details.",
		"[[File:Cover.jpg|right|frameless]]\nCaption text.",
	}
	for _, text := range cases {
		res := protect.Segment(text, "sr", nil, nil, false)
		if strings.Contains(res.Text, "{{") || strings.Contains(res.Text, "<ref") {
			t.Errorf("unprotected construct remains in %q", res.Text)
		}
		restored := protect.Restore(res.Text, res.Placeholders)
		if restored != text {
			t.Errorf("round trip mismatch:\n  in:  %q\n  out: %q", text, restored)
		}
	}
}

func TestSegment_TokenizesLinksWithLanguageSuffix(t *testing.T) {
	text := "[[Conscious Dance Practices/The Guidebook|reading the Guidebook]]"
	res := protect.Segment(text, "it", nil, nil, false)

	if !strings.HasPrefix(res.Text, "ZZZLINK") {
		t.Fatalf("expected link token, got %q", res.Text)
	}
	if strings.Contains(res.Text, "[[") || strings.Contains(res.Text, "]]") {
		t.Errorf("link markup leaked into protected text: %q", res.Text)
	}
	if len(res.RequiredLinks) != 1 {
		t.Fatalf("expected 1 required link token, got %d", len(res.RequiredLinks))
	}
	found := false
	for _, v := range res.Placeholders {
		if strings.HasPrefix(v, "[[Conscious Dance Practices/The Guidebook/it|") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected language-suffixed target in placeholders: %v", res.Placeholders)
	}
	if len(res.Displays) != 1 || res.Displays[0].Display != "reading the Guidebook" {
		t.Errorf("expected explicit display queued, got %v", res.Displays)
	}
	if len(res.Targets) != 1 || res.Targets[0] != "Conscious Dance Practices/The Guidebook" {
		t.Errorf("unexpected targets: %v", res.Targets)
	}
}

func TestSegment_ImplicitLinkIsFullyOpaque(t *testing.T) {
	res := protect.Segment("See [[Core Values]] here.", "pt", nil, nil, false)
	if len(res.Displays) != 0 {
		t.Errorf("implicit link must not queue display translation: %v", res.Displays)
	}
	restored := protect.Restore(res.Text, res.Placeholders)
	if !strings.Contains(restored, "[[Core Values/pt|Core Values]]") {
		t.Errorf("unexpected restore: %q", restored)
	}
}

func TestSegment_OpaqueLinksQueueNothing(t *testing.T) {
	res := protect.Segment("[[Page|label text]]", "sr", nil, nil, true)
	if len(res.Displays) != 0 {
		t.Errorf("opaque mode must not queue displays: %v", res.Displays)
	}
}

func TestSegment_ExistingSuffixNotStacked(t *testing.T) {
	res := protect.Segment("[[Manifesto/pt]]", "pt", nil, nil, false)
	restored := protect.Restore(res.Text, res.Placeholders)
	if strings.Contains(restored, "/pt/pt") {
		t.Errorf("language suffix stacked: %q", restored)
	}
}

func TestSegment_OtherLanguageSuffixReplaced(t *testing.T) {
	res := protect.Segment("See [[Foo/de]] for details.", "pt", []string{"de", "fr"}, nil, false)
	restored := protect.Restore(res.Text, res.Placeholders)
	if !strings.Contains(restored, "[[Foo/pt|Foo]]") {
		t.Errorf("existing suffix not replaced: %q", restored)
	}
	if len(res.Targets) != 1 || res.Targets[0] != "Foo" {
		t.Errorf("target not indexed by bare name: %v", res.Targets)
	}
}

func TestSegment_GlossaryTerms(t *testing.T) {
	terms := []protect.Term{{Term: "5Rhythms", Preferred: "5Ritmova"}}
	res := protect.Segment("The 5Rhythms practice", "sr", nil, terms, false)
	if strings.Contains(res.Text, "5Rhythms") {
		t.Fatalf("term not protected: %q", res.Text)
	}
	restored := protect.Restore(res.Text, res.Placeholders)
	if !strings.Contains(restored, "5Ritmova") {
		t.Errorf("expected preferred form after restore, got %q", restored)
	}
}

func TestMissingTokens(t *testing.T) {
	required := map[string]struct{}{"ZZZLINK0ZZZ": {}, "ZZZLINK1ZZZ": {}}
	missing := protect.MissingTokens("x ZZZLINK0ZZZ y", required)
	if len(missing) != 1 || missing[0] != "ZZZLINK1ZZZ" {
		t.Errorf("missing = %v, want [ZZZLINK1ZZZ]", missing)
	}
}

func TestStripUnresolved(t *testing.T) {
	got := protect.StripUnresolved("Hello ZZZPH0ZZZ world ZZZLINK1ZZZ")
	if got != "Hello  world " {
		t.Errorf("StripUnresolved = %q", got)
	}
}

func TestRestore_NestedPlaceholderValues(t *testing.T) {
	// A protected template may wrap an already-tokenized link.
	ph := map[string]string{
		"ZZZPH0ZZZ":   "{{Box|ZZZLINK0ZZZ}}",
		"ZZZLINK0ZZZ": "[[Target/sr|Target]]",
	}
	got := protect.Restore("Before ZZZPH0ZZZ after", ph)
	if got != "Before {{Box|[[Target/sr|Target]]}} after" {
		t.Errorf("nested restore failed: %q", got)
	}
}
