// Package segment extracts the ordered, addressable translation units of a
// source document. The preferred source is the content store's unit
// collection; when that is unavailable the raw markup is split at the
// embedded <!--T:n--> markers. Keys are ordinal strings; non-numeric keys
// are discarded and duplicates keep their first occurrence.
package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// unit boundary markers embedded in translatable markup
	markerRe = regexp.MustCompile(`<!--T:(\d+)-->`)

	// <translate>/</translate> wrapper tags, removed from unit bodies
	translateTagRe = regexp.MustCompile(`</?translate>`)
)

// Segment is one translatable unit of a document.
type Segment struct {
	Key  string
	Text string
}

// SplitMarkers splits raw source markup at <!--T:n--> markers. Units with
// empty bodies are dropped. Returns nil when the markup carries no markers.
func SplitMarkers(wikitext string) []Segment {
	matches := markerRe.FindAllStringSubmatchIndex(wikitext, -1)
	if len(matches) == 0 {
		return nil
	}

	var segments []Segment
	for i, m := range matches {
		start := m[1]
		end := len(wikitext)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		key := wikitext[m[2]:m[3]]
		body := translateTagRe.ReplaceAllString(wikitext[start:end], "")
		body = strings.TrimSpace(body)
		if body != "" {
			segments = append(segments, Segment{Key: key, Text: body})
		}
	}
	return segments
}

// Normalize drops segments with non-numeric keys, removes duplicate keys
// (first occurrence wins) and orders the result by ascending numeric key.
// The first segment of the result is the document's metadata segment.
func Normalize(segments []Segment) []Segment {
	seen := make(map[string]bool, len(segments))
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if _, err := strconv.Atoi(seg.Key); err != nil {
			continue
		}
		if seen[seg.Key] {
			continue
		}
		seen[seg.Key] = true
		out = append(out, seg)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].Key)
		b, _ := strconv.Atoi(out[j].Key)
		return a < b
	})
	return out
}

// Keys returns the key set of segments in order.
func Keys(segments []Segment) []string {
	keys := make([]string, len(segments))
	for i, seg := range segments {
		keys[i] = seg.Key
	}
	return keys
}

// SameKeySet reports whether two key collections contain exactly the same
// keys, regardless of order. Used to detect document restructuring (units
// added, removed, split or merged) between runs.
func SameKeySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if !set[k] {
			return false
		}
	}
	return true
}
