// Package links rewrites internal document-to-document references in a
// translated segment so they point at the language-specific variant of
// their target, attaching localized display text where available.
package links

import (
	"regexp"
	"strings"
)

var linkRe = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

// Localizer rewrites internal links for one target language.
type Localizer struct {
	// Lang is the target language suffix appended to link targets.
	Lang string
	// KnownLangs are all language suffixes the system may have produced;
	// they are stripped before suffixing so suffixes never stack.
	KnownLangs []string
	// Targets is the set of pages the current segment set actually
	// references. Links outside this set are left untouched.
	Targets map[string]bool
	// Displays maps a referenced page to its localized display text.
	Displays map[string]string
}

// stripLangSuffix removes a trailing /<lang> for any known language,
// returning the bare page name.
func (l *Localizer) stripLangSuffix(page string) string {
	if strings.HasSuffix(page, "/"+l.Lang) {
		return strings.TrimSuffix(page, "/"+l.Lang)
	}
	for _, lang := range l.KnownLangs {
		if strings.HasSuffix(page, "/"+lang) {
			return strings.TrimSuffix(page, "/"+lang)
		}
	}
	return page
}

// Rewrite localizes every internal link in text:
//
//   - the target gains the /<lang> suffix (any existing language suffix is
//     stripped first);
//   - an implicit link gains the localized display text when one is known,
//     else it stays implicit;
//   - explicit display text equal to the untranslated target name is
//     upgraded to the localized display text;
//   - any other explicit display text is assumed already translated and
//     kept as is.
//
// Links whose target is not in the run's reference set, and links with a
// namespace or interwiki prefix, are left untouched.
func (l *Localizer) Rewrite(text string) string {
	return linkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := linkRe.FindStringSubmatch(match)
		target := m[1]
		display := m[2]
		if strings.Contains(target, ":") {
			return match
		}

		page, anchor, _ := strings.Cut(target, "#")
		bare := l.stripLangSuffix(page)
		if !l.Targets[bare] {
			return match
		}

		newTarget := bare + "/" + l.Lang
		if anchor != "" {
			newTarget += "#" + anchor
		}

		localized := l.Displays[bare]
		switch {
		case display == "":
			// Implicit display: attach the localized text when known,
			// otherwise keep the link implicit.
			if localized == "" {
				return "[[" + newTarget + "]]"
			}
			display = localized
		case display == bare, display == page, display == bare+"/"+l.Lang:
			// Literal source-language label: upgrade when a localized
			// display exists, otherwise show the bare name without suffix.
			if localized != "" {
				display = localized
			} else {
				display = bare
			}
		}
		return "[[" + newTarget + "|" + display + "]]"
	})
}
