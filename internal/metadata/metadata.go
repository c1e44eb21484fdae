// Package metadata rebuilds the leading metadata preamble of a document's
// metadata segment: status marker, display-title directive, table-of-contents
// suppression and leading file reference, in that fixed order with zero
// blank lines between them. A blank or space-led first body line would be
// misrendered as preformatted text, so the preamble is always compacted.
package metadata

import (
	"regexp"
	"strings"

	"github.com/valpere/wikisync/internal/status"
)

var (
	displayTitleRe = regexp.MustCompile(`(?i)\{\{\s*DISPLAYTITLE\s*:[^{}]*\}\}`)
	notocRe        = regexp.MustCompile(`__NOTOC__`)
	fileLinkRe     = regexp.MustCompile(`(?i)^\[\[(?:File|Image):[^\]]+\]\]`)
	statusHeadRe   = regexp.MustCompile(`^\{\{\s*Translation[ _]status[^{}]*\}\}`)
	disclaimerRe   = regexp.MustCompile(`(?s)\{\|\s*class="translation-disclaimer".*?\n\|\}`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
	headingGapRe   = regexp.MustCompile(`(?m)^(=+[^\n]*=+)[ \t]*\n\n+`)
)

type preamble struct {
	titles []string
	notoc  bool
	files  []string
	body   string
}

// parsePreamble consumes leading directives (status templates, display
// titles, __NOTOC__, file links) regardless of interleaved blank lines, and
// returns them separated from the remaining body. Status templates are
// dropped; callers supply the authoritative one.
func parsePreamble(text string) preamble {
	var p preamble
	rest := text
	for {
		rest = strings.TrimLeft(rest, " \t\n")
		switch {
		case statusHeadRe.MatchString(rest):
			m := statusHeadRe.FindString(rest)
			rest = rest[len(m):]
		case strings.HasPrefix(rest, "__NOTOC__"):
			p.notoc = true
			rest = rest[len("__NOTOC__"):]
		default:
			if m := displayTitleRe.FindStringIndex(rest); m != nil && m[0] == 0 {
				p.titles = append(p.titles, rest[:m[1]])
				rest = rest[m[1]:]
				continue
			}
			if m := fileLinkRe.FindString(rest); m != "" {
				p.files = append(p.files, m)
				rest = rest[len(m):]
				continue
			}
			p.body = rest
			return p
		}
	}
}

// Compose rebuilds the metadata segment: statusTemplate, a single
// display-title directive for displayTitle, __NOTOC__ when the segment had
// one, the leading file references, then the body. Duplicate status markers
// and display-title directives anywhere in the segment are stripped first.
func Compose(text, statusTemplate, displayTitle string) string {
	text = status.StripTemplates(text)
	text = displayTitleRe.ReplaceAllString(text, "")
	p := parsePreamble(text)

	var b strings.Builder
	b.WriteString(statusTemplate)
	b.WriteString("{{DISPLAYTITLE:")
	b.WriteString(displayTitle)
	b.WriteString("}}")
	if p.notoc {
		b.WriteString("__NOTOC__")
	}
	for _, f := range p.files {
		b.WriteString(f)
	}
	if p.body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(p.body, " \t\n"))
	}
	return b.String()
}

// UpsertStatus replaces (or inserts) the status template at the head of the
// segment, keeping any existing display-title directive, and compacts the
// preamble.
func UpsertStatus(text, statusTemplate string) string {
	clean := status.StripTemplates(text)
	p := parsePreamble(clean)

	var b strings.Builder
	b.WriteString(statusTemplate)
	for _, title := range p.titles {
		b.WriteString(title)
	}
	if p.notoc {
		b.WriteString("__NOTOC__")
	}
	for _, f := range p.files {
		b.WriteString(f)
	}
	if p.body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(p.body, " \t\n"))
	}
	return b.String()
}

// InsertAfterPreamble places insert between the compacted preamble and the
// body, keeping the body's first line safe from preformatted rendering.
func InsertAfterPreamble(text, insert string) string {
	p := parsePreamble(text)
	head := strings.TrimSuffix(text, p.body)
	head = strings.TrimRight(head, " \t\n")
	if head == "" {
		return insert + "\n\n" + strings.TrimLeft(p.body, " \t\n")
	}
	return head + "\n" + insert + "\n\n" + strings.TrimLeft(p.body, " \t\n")
}

// RemoveDisclaimerTables strips previously inserted machine-translation
// disclaimer boxes.
func RemoveDisclaimerTables(text string) string {
	return strings.TrimSpace(disclaimerRe.ReplaceAllString(text, ""))
}

// CollapseBlankLines reduces runs of blank lines to a single blank line.
func CollapseBlankLines(text string) string {
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

// NormalizeHeadingSpacing removes blank lines between a heading and its
// body.
func NormalizeHeadingSpacing(text string) string {
	return headingGapRe.ReplaceAllString(text, "$1\n")
}
