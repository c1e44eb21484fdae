package protect

import (
	"regexp"
	"strings"
)

var (
	underConstructionRe = regexp.MustCompile(`(?i)\{\{\s*Under construction[^{}]*\}\}`)
	emptyParagraphRe    = regexp.MustCompile(`(?i)<p>\s*(?:<br\s*/?>\s*)+</p>`)
	htmlTagRe           = regexp.MustCompile(`<[^<>]+>`)
	namespacedLinkRe    = regexp.MustCompile(`\[\[([^\]|:]+):([^\]]*)\]\]`)
)

// RestoreFileLinks replaces translated File/Image links with their source
// counterparts pairwise by occurrence order. Source file links missing from
// the translation entirely are prepended so images are never lost.
func RestoreFileLinks(source, translated string) string {
	sourceLinks := fileLinkRe.FindAllString(source, -1)
	if len(sourceLinks) == 0 {
		return translated
	}
	translatedLinks := fileLinkRe.FindAllString(translated, -1)
	if len(translatedLinks) == 0 {
		prefix := strings.Join(sourceLinks, "\n")
		if translated == "" {
			return prefix
		}
		return prefix + "\n" + translated
	}
	out := translated
	for i, src := range sourceLinks {
		if i >= len(translatedLinks) {
			break
		}
		out = strings.Replace(out, translatedLinks[i], src, 1)
	}
	if len(sourceLinks) > len(translatedLinks) {
		extra := strings.Join(sourceLinks[len(translatedLinks):], "\n")
		out = extra + "\n" + out
	}
	return out
}

// ReinsertMissing appends source reference blocks, under-construction
// markers and magic words that the provider dropped from the translated
// text. Placement is best-effort: dropped constructs are appended on their
// own lines.
func ReinsertMissing(source, translated string) string {
	var dropped []string
	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllString(source, -1) {
			if !strings.Contains(translated, m) {
				dropped = append(dropped, m)
			}
		}
	}
	collect(referencesBlockRe)
	collect(referencesSelfRe)
	collect(refBlockRe)
	collect(refSelfRe)
	collect(underConstructionRe)
	collect(magicWordRe)

	if len(dropped) == 0 {
		return translated
	}
	return strings.TrimRight(translated, "\n") + "\n" + strings.Join(dropped, "\n")
}

// RestoreHTMLTags restores the source spelling of HTML tags (names and
// attribute values the provider may have translated) pairwise by occurrence
// order between source and translated text.
func RestoreHTMLTags(source, translated string) string {
	sourceTags := htmlTagRe.FindAllString(source, -1)
	if len(sourceTags) == 0 {
		return translated
	}
	locs := htmlTagRe.FindAllStringIndex(translated, -1)
	if len(locs) == 0 {
		return translated
	}
	var b strings.Builder
	last := 0
	for i, loc := range locs {
		if i >= len(sourceTags) {
			break
		}
		b.WriteString(translated[last:loc[0]])
		b.WriteString(sourceTags[i])
		last = loc[1]
	}
	b.WriteString(translated[last:])
	return b.String()
}

// RestoreCategoryNamespace restores the canonical untranslated Category
// namespace keyword on translated category links, pairing namespaced links
// by occurrence order with the source.
func RestoreCategoryNamespace(source, translated string) string {
	sourceNS := namespacedLinkRe.FindAllStringSubmatch(source, -1)
	if len(sourceNS) == 0 {
		return translated
	}
	idx := 0
	return namespacedLinkRe.ReplaceAllStringFunc(translated, func(match string) string {
		m := namespacedLinkRe.FindStringSubmatch(match)
		i := idx
		idx++
		if i >= len(sourceNS) {
			return match
		}
		if !strings.EqualFold(sourceNS[i][1], "Category") {
			return match
		}
		return "[[Category:" + m[2] + "]]"
	})
}

// StripIndent removes leading spaces from every line. Wiki markup renders a
// line starting with a space as preformatted text, which some providers
// introduce accidentally.
func StripIndent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " ")
	}
	return strings.Join(lines, "\n")
}

// StripEmptyParagraphs removes <p><br></p> artifacts and trims the result.
func StripEmptyParagraphs(text string) string {
	return strings.TrimSpace(emptyParagraphRe.ReplaceAllString(text, ""))
}
