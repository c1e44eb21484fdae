// Package protect converts structural wiki constructs into opaque tokens
// before free text is sent to the translation provider, and restores them
// afterwards. Tokens are letter-only markers (ZZZPH0ZZZ, ZZZLINK0ZZZ,
// ZZZNT0ZZZ) that survive machine translation unchanged; restoration is a
// literal token→original substitution, never positional.
//
// Balanced constructs (templates {{…}}, links [[…]]) are found with a small
// recursive-descent scanner so nesting boundaries are handled exactly.
package protect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// <references .../> and <references>…</references> blocks
	referencesBlockRe = regexp.MustCompile(`(?is)<references\b[^>]*>.*?</references>`)
	referencesSelfRe  = regexp.MustCompile(`(?i)<references\b[^>]*/\s*>`)

	// <ref>…</ref> and self-closing <ref/> citations
	refBlockRe = regexp.MustCompile(`(?is)<ref\b[^>]*>.*?</ref>`)
	refSelfRe  = regexp.MustCompile(`(?i)<ref\b[^>]*/\s*>`)

	// HTML comments, including bot markers like <!--BOT_DISCLAIMER-->
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

	// magic words such as __NOTOC__
	magicWordRe = regexp.MustCompile(`__([A-Z0-9_]+)__`)

	// whole File/Image links; nothing inside them may change
	fileLinkRe = regexp.MustCompile(`(?i)\[\[(?:File|Image):[^\]]+\]\]`)

	// raw URLs
	urlRe = regexp.MustCompile(`https?://\S+`)

	// any token emitted by this package
	tokenRe = regexp.MustCompile(`ZZZ(?:PH|LINK|NT)\d+ZZZ`)
)

// Term is a do-not-translate glossary entry: occurrences of Term are
// protected before translation and replaced with Preferred on restore.
type Term struct {
	Term      string
	Preferred string
}

// LinkDisplay is an explicit link label queued for separate translation.
type LinkDisplay struct {
	Token   string // the link's token in the protected text
	Target  string // rewritten (language-suffixed) link target
	Display string // source display text
}

// Result carries a protected segment text together with everything needed
// to restore it.
type Result struct {
	Text          string
	Placeholders  map[string]string   // token → replacement text
	RequiredLinks map[string]struct{} // link tokens that must survive translation
	Displays      []LinkDisplay
	Targets       []string // source pages referenced by this segment's links
}

type tokenizer struct {
	placeholders map[string]string
	counts       map[string]int
}

func newTokenizer() *tokenizer {
	return &tokenizer{placeholders: map[string]string{}, counts: map[string]int{}}
}

func (t *tokenizer) add(kind, replacement string) string {
	token := fmt.Sprintf("ZZZ%s%dZZZ", kind, t.counts[kind])
	t.counts[kind]++
	t.placeholders[token] = replacement
	return token
}

// Segment runs the full protection sequence for one segment: links first,
// then glossary terms, then the remaining generic constructs. knownLangs
// are the language suffixes stripped from link targets before suffixing so
// suffixes never stack. When opaqueLinks is set every link is fully opaque
// (most conservative protection, used when the provider dropped a link
// token).
func Segment(text, lang string, knownLangs []string, terms []Term, opaqueLinks bool) Result {
	tok := newTokenizer()

	text, displays, targets, required := tokenizeLinks(tok, text, lang, knownLangs, opaqueLinks)
	text = protectTerms(tok, text, terms)
	text = protectGeneric(tok, text)

	return Result{
		Text:          text,
		Placeholders:  tok.placeholders,
		RequiredLinks: required,
		Displays:      displays,
		Targets:       targets,
	}
}

var linkRe = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

// isSafeInternalLink reports whether target is a plain document-to-document
// reference (no namespace or interwiki prefix).
func isSafeInternalLink(target string) bool {
	return !strings.Contains(target, ":")
}

// stripLangSuffix removes a trailing /<lang> for the target language or any
// other known language, returning the bare page name so suffixes never
// stack.
func stripLangSuffix(page, lang string, knownLangs []string) string {
	if strings.HasSuffix(page, "/"+lang) {
		return strings.TrimSuffix(page, "/"+lang)
	}
	for _, known := range knownLangs {
		if strings.HasSuffix(page, "/"+known) {
			return strings.TrimSuffix(page, "/"+known)
		}
	}
	return page
}

// tokenizeLinks rewrites each internal link to its language-suffixed target
// and replaces the whole link with a single opaque token. Any existing
// language suffix on the target is stripped first. Explicit display text is
// queued for separate translation unless opaque is set; implicit links keep
// the untranslated bare target name as display.
func tokenizeLinks(tok *tokenizer, text, lang string, knownLangs []string, opaque bool) (string, []LinkDisplay, []string, map[string]struct{}) {
	var displays []LinkDisplay
	var targets []string
	required := make(map[string]struct{})
	seen := make(map[string]bool)

	out := linkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := linkRe.FindStringSubmatch(match)
		target := m[1]
		display := m[2]
		if !isSafeInternalLink(target) {
			return match
		}

		page, anchor, _ := strings.Cut(target, "#")
		bare := stripLangSuffix(page, lang, knownLangs)
		if !seen[bare] {
			seen[bare] = true
			targets = append(targets, bare)
		}
		newTarget := bare + "/" + lang
		if anchor != "" {
			newTarget += "#" + anchor
		}

		explicit := display != ""
		if display == "" {
			// Implicit display keeps the bare source name untranslated.
			display = bare
		}
		token := tok.add("LINK", fmt.Sprintf("[[%s|%s]]", newTarget, display))
		required[token] = struct{}{}
		if explicit && !opaque {
			displays = append(displays, LinkDisplay{Token: token, Target: newTarget, Display: display})
		}
		return token
	})
	return out, displays, targets, required
}

// protectTerms tokenizes do-not-translate terms, longest first so longer
// terms win over their substrings.
func protectTerms(tok *tokenizer, text string, terms []Term) string {
	if len(terms) == 0 {
		return text
	}
	ordered := make([]Term, len(terms))
	copy(ordered, terms)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i].Term) > len(ordered[j].Term) })

	for _, term := range ordered {
		if term.Term == "" || term.Preferred == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term.Term) + `\b`)
		if err != nil {
			continue
		}
		preferred := term.Preferred
		text = re.ReplaceAllStringFunc(text, func(string) string {
			return tok.add("NT", preferred)
		})
	}
	return text
}

// protectGeneric tokenizes the remaining protectable constructs: reference
// blocks, comments, magic words, file links, balanced templates, balanced
// links not already tokenized, and raw URLs.
func protectGeneric(tok *tokenizer, text string) string {
	sub := func(match string) string { return tok.add("PH", match) }

	text = referencesBlockRe.ReplaceAllStringFunc(text, sub)
	text = referencesSelfRe.ReplaceAllStringFunc(text, sub)
	text = refBlockRe.ReplaceAllStringFunc(text, sub)
	text = refSelfRe.ReplaceAllStringFunc(text, sub)
	text = commentRe.ReplaceAllStringFunc(text, sub)
	text = magicWordRe.ReplaceAllStringFunc(text, sub)
	text = fileLinkRe.ReplaceAllStringFunc(text, sub)

	text = replaceSpans(tok, text, scanBalanced(text, "{{", "}}"))
	text = replaceSpans(tok, text, scanBalanced(text, "[[", "]]"))

	return urlRe.ReplaceAllStringFunc(text, sub)
}

func replaceSpans(tok *tokenizer, text string, spans [][2]int) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span[0]])
		b.WriteString(tok.add("PH", text[span[0]:span[1]]))
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// scanBalanced returns the top-level spans of balanced open…close
// constructs in text. Unclosed constructs are ignored.
func scanBalanced(text, open, close string) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], open) {
			if end, ok := consumeConstruct(text, i, open, close); ok {
				spans = append(spans, [2]int{i, end})
				i = end
				continue
			}
			i += len(open)
			continue
		}
		i++
	}
	return spans
}

// consumeConstruct consumes one construct starting at start (which must
// begin with the open token), descending into nested constructs, and
// returns the index just past the matching close token.
func consumeConstruct(text string, start int, open, close string) (int, bool) {
	i := start + len(open)
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], open):
			end, ok := consumeConstruct(text, i, open, close)
			if !ok {
				return 0, false
			}
			i = end
		case strings.HasPrefix(text[i:], close):
			return i + len(close), true
		default:
			i++
		}
	}
	return 0, false
}

// Restore substitutes every token in text with its captured replacement.
// Replacement values may themselves contain tokens (a protected template
// wrapping an already-tokenized link), so substitution runs in passes until
// stable, with a small bound as a cycle guard.
func Restore(text string, placeholders map[string]string) string {
	if len(placeholders) == 0 {
		return text
	}
	for pass := 0; pass < 5; pass++ {
		changed := false
		for token, value := range placeholders {
			if strings.Contains(text, token) {
				text = strings.ReplaceAll(text, token, value)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return text
}

// MissingTokens returns the required tokens absent from text, sorted.
func MissingTokens(text string, required map[string]struct{}) []string {
	var missing []string
	for token := range required {
		if !strings.Contains(text, token) {
			missing = append(missing, token)
		}
	}
	sort.Strings(missing)
	return missing
}

// StripUnresolved removes any leftover tokens from text.
func StripUnresolved(text string) string {
	return tokenRe.ReplaceAllString(text, "")
}
