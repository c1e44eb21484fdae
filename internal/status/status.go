// Package status models the translation review state of a translated page
// and the gate that protects human-reviewed translations from being
// overwritten by machine translation.
//
// State is carried as a small key=value parameter block serialized into a
// {{Translation status|...}} template at the head of the metadata segment,
// and mirrored into page properties by the content store. The same block
// must parse and emit identically on every round trip.
package status

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the review state of a translated page.
type Status string

const (
	Machine  Status = "machine"
	Reviewed Status = "reviewed"
	Outdated Status = "outdated"
)

// Property keys under which the content store mirrors status metadata.
const (
	PropStatus              = "mt_translation_status"
	PropSourceRev           = "mt_source_rev_at_translation"
	PropReviewedAt          = "mt_reviewed_at"
	PropReviewedBy          = "mt_reviewed_by"
	PropOutdatedSourceRev   = "mt_outdated_source_rev"
)

// Meta is the full status metadata block. Revision values are kept as
// strings: they are opaque identifiers compared for equality only.
type Meta struct {
	Status                 Status
	SourceRevAtTranslation string
	ReviewedAt             string
	ReviewedBy             string
	OutdatedSourceRev      string
}

// templateRe matches a serialized status template. Both the canonical
// "Translation status" spelling and the underscore variant occur in stored
// pages.
var templateRe = regexp.MustCompile(`\{\{\s*Translation[ _]status\s*((?:\|[^{}]*?)?)\}\}`)

// ParseTemplate extracts the first status template from text. The second
// return value is false when no template is present.
func ParseTemplate(text string) (Meta, bool) {
	m := templateRe.FindStringSubmatch(text)
	if m == nil {
		return Meta{}, false
	}
	var meta Meta
	for _, part := range strings.Split(m[1], "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "status":
			meta.Status = Status(strings.ToLower(value))
		case "source_rev_at_translation":
			meta.SourceRevAtTranslation = value
		case "reviewed_at":
			meta.ReviewedAt = value
		case "reviewed_by":
			meta.ReviewedBy = value
		case "outdated_source_rev":
			meta.OutdatedSourceRev = value
		}
	}
	return meta, meta.Status != ""
}

// Template serializes the metadata block in canonical parameter order.
// Empty optional fields are omitted.
func (m Meta) Template() string {
	var b strings.Builder
	b.WriteString("{{Translation status|status=")
	b.WriteString(string(m.Status))
	if m.SourceRevAtTranslation != "" {
		fmt.Fprintf(&b, "|source_rev_at_translation=%s", m.SourceRevAtTranslation)
	}
	if m.ReviewedAt != "" {
		fmt.Fprintf(&b, "|reviewed_at=%s", m.ReviewedAt)
	}
	if m.ReviewedBy != "" {
		fmt.Fprintf(&b, "|reviewed_by=%s", m.ReviewedBy)
	}
	if m.OutdatedSourceRev != "" {
		fmt.Fprintf(&b, "|outdated_source_rev=%s", m.OutdatedSourceRev)
	}
	b.WriteString("}}")
	return b.String()
}

// StripTemplates removes every status template from text.
func StripTemplates(text string) string {
	return templateRe.ReplaceAllString(text, "")
}

// FromProps reads status metadata from a page-property map. The second
// return value is false when the map carries no status property.
func FromProps(props map[string]string) (Meta, bool) {
	meta := Meta{
		Status:                 Status(strings.ToLower(strings.TrimSpace(props[PropStatus]))),
		SourceRevAtTranslation: strings.TrimSpace(props[PropSourceRev]),
		ReviewedAt:             strings.TrimSpace(props[PropReviewedAt]),
		ReviewedBy:             strings.TrimSpace(props[PropReviewedBy]),
		OutdatedSourceRev:      strings.TrimSpace(props[PropOutdatedSourceRev]),
	}
	return meta, meta.Status != ""
}

// Source is one typed status lookup. Lookups are consulted in order; see
// Merge.
type Source struct {
	Name   string
	Lookup func() (Meta, bool)
}

// Merge combines status metadata from an ordered list of sources. Each field
// takes its value from the first source that reports it; a source whose
// lookup returns false contributes nothing. When no source reports a status
// the result defaults to Machine.
func Merge(sources []Source) Meta {
	var merged Meta
	for _, src := range sources {
		meta, ok := src.Lookup()
		if !ok {
			continue
		}
		if merged.Status == "" {
			merged.Status = meta.Status
		}
		if merged.SourceRevAtTranslation == "" {
			merged.SourceRevAtTranslation = meta.SourceRevAtTranslation
		}
		if merged.ReviewedAt == "" {
			merged.ReviewedAt = meta.ReviewedAt
		}
		if merged.ReviewedBy == "" {
			merged.ReviewedBy = meta.ReviewedBy
		}
		if merged.OutdatedSourceRev == "" {
			merged.OutdatedSourceRev = meta.OutdatedSourceRev
		}
	}
	if merged.Status == "" {
		merged.Status = Machine
	}
	return merged
}

// Outcome is the status gate's verdict for one (document, language) run.
type Outcome string

const (
	// OutcomeProceed: machine translation may run.
	OutcomeProceed Outcome = "proceed"
	// OutcomeLockedReviewed: a current human-reviewed translation exists;
	// nothing is touched.
	OutcomeLockedReviewed Outcome = "locked_reviewed"
	// OutcomeLockedOutdated: the page is already marked outdated; only an
	// explicit forced run may re-translate it.
	OutcomeLockedOutdated Outcome = "locked_outdated"
	// OutcomeOutdated: a reviewed translation no longer matches the current
	// source revision; the caller must persist the transition to outdated
	// and stop.
	OutcomeOutdated Outcome = "outdated"
)

// Gate applies the status decision table. currentRev is the source
// document's current revision identifier.
func Gate(meta Meta, currentRev string) Outcome {
	switch meta.Status {
	case Reviewed:
		if meta.SourceRevAtTranslation == currentRev {
			return OutcomeLockedReviewed
		}
		return OutcomeOutdated
	case Outdated:
		return OutcomeLockedOutdated
	default:
		return OutcomeProceed
	}
}
