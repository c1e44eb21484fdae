package metadata

import (
	"strings"
	"testing"
)

const tmpl = "{{Translation_status|status=machine}}"

func TestComposeCompactsPreamble(t *testing.T) {
	in := "{{Translation_status|status=reviewed}}\n\n{{DISPLAYTITLE:Old Title}}\n\n__NOTOC__\n\nFirst paragraph."
	got := Compose(in, tmpl, "Nova Pagina")
	want := tmpl + "{{DISPLAYTITLE:Nova Pagina}}__NOTOC__\nFirst paragraph."
	if got != want {
		t.Errorf("Compose:\n got %q\nwant %q", got, want)
	}
}

func TestComposeInsertsMissingDirectives(t *testing.T) {
	got := Compose("Just a body.", tmpl, "Titre")
	want := tmpl + "{{DISPLAYTITLE:Titre}}\nJust a body."
	if got != want {
		t.Errorf("Compose:\n got %q\nwant %q", got, want)
	}
}

func TestComposeKeepsLeadingFileLink(t *testing.T) {
	in := "[[File:Banner.png|thumb]]\nBody text."
	got := Compose(in, tmpl, "T")
	want := tmpl + "{{DISPLAYTITLE:T}}[[File:Banner.png|thumb]]\nBody text."
	if got != want {
		t.Errorf("Compose:\n got %q\nwant %q", got, want)
	}
}

func TestComposeStripsDuplicateDirectives(t *testing.T) {
	in := "{{DISPLAYTITLE:A}}\nBody with {{DISPLAYTITLE:B}} inside.\n{{Translation_status|status=machine}}"
	got := Compose(in, tmpl, "C")
	if strings.Count(got, "DISPLAYTITLE") != 1 {
		t.Errorf("duplicate display titles survived: %q", got)
	}
	if strings.Count(got, "Translation_status") != 1 {
		t.Errorf("duplicate status templates survived: %q", got)
	}
}

func TestComposeEmptyBody(t *testing.T) {
	got := Compose("__NOTOC__", tmpl, "T")
	want := tmpl + "{{DISPLAYTITLE:T}}__NOTOC__"
	if got != want {
		t.Errorf("Compose: got %q want %q", got, want)
	}
}

func TestUpsertStatusReplacesAndCompacts(t *testing.T) {
	in := "{{Translation_status|status=machine}}{{DISPLAYTITLE:Foo}}\n\n__NOTOC__\nBody"
	got := UpsertStatus(in, "{{Translation_status|status=reviewed|reviewed_by=Admin}}")
	want := "{{Translation_status|status=reviewed|reviewed_by=Admin}}{{DISPLAYTITLE:Foo}}__NOTOC__\nBody"
	if got != want {
		t.Errorf("UpsertStatus:\n got %q\nwant %q", got, want)
	}
}

func TestUpsertStatusInsertsWhenAbsent(t *testing.T) {
	got := UpsertStatus("{{DISPLAYTITLE:Foo}}\nBody", tmpl)
	want := tmpl + "{{DISPLAYTITLE:Foo}}\nBody"
	if got != want {
		t.Errorf("UpsertStatus: got %q want %q", got, want)
	}
}

func TestInsertAfterPreamble(t *testing.T) {
	in := tmpl + "{{DISPLAYTITLE:Foo}}\nFirst line."
	got := InsertAfterPreamble(in, "{| class=\"translation-disclaimer\"\n| note\n|}")
	want := tmpl + "{{DISPLAYTITLE:Foo}}\n{| class=\"translation-disclaimer\"\n| note\n|}\n\nFirst line."
	if got != want {
		t.Errorf("InsertAfterPreamble:\n got %q\nwant %q", got, want)
	}
}

func TestInsertAfterPreambleNoPreamble(t *testing.T) {
	got := InsertAfterPreamble("Body only.", "NOTE")
	if got != "NOTE\n\nBody only." {
		t.Errorf("InsertAfterPreamble: got %q", got)
	}
}

func TestRemoveDisclaimerTables(t *testing.T) {
	in := "Intro\n{| class=\"translation-disclaimer\"\n| machine translated\n|}\nBody"
	got := RemoveDisclaimerTables(in)
	if strings.Contains(got, "translation-disclaimer") {
		t.Errorf("disclaimer survived: %q", got)
	}
	if !strings.Contains(got, "Intro") || !strings.Contains(got, "Body") {
		t.Errorf("surrounding text lost: %q", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	got := CollapseBlankLines("a\n\n\n\nb")
	if got != "a\n\nb" {
		t.Errorf("CollapseBlankLines: got %q", got)
	}
}

func TestNormalizeHeadingSpacing(t *testing.T) {
	got := NormalizeHeadingSpacing("==== [[Page|Heading]] ====\n\n\nBody")
	if got != "==== [[Page|Heading]] ====\nBody" {
		t.Errorf("NormalizeHeadingSpacing: got %q", got)
	}
}
