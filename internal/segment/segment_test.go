package segment_test

import (
	"testing"

	"github.com/valpere/wikisync/internal/segment"
)

func TestSplitMarkers(t *testing.T) {
	wikitext := "<translate>\n<!--T:1-->\nFirst unit\n\n<!--T:2-->\nSecond unit\n</translate>\n"
	segs := segment.SplitMarkers(wikitext)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(segs), segs)
	}
	if segs[0].Key != "1" || segs[0].Text != "First unit" {
		t.Errorf("unexpected first segment: %+v", segs[0])
	}
	if segs[1].Key != "2" || segs[1].Text != "Second unit" {
		t.Errorf("unexpected second segment: %+v", segs[1])
	}
}

func TestSplitMarkers_NoMarkers(t *testing.T) {
	if segs := segment.SplitMarkers("Plain page without markers"); segs != nil {
		t.Errorf("expected nil, got %v", segs)
	}
}

func TestSplitMarkers_DropsEmptyUnits(t *testing.T) {
	segs := segment.SplitMarkers("<!--T:1-->\n\n<!--T:2-->\nBody")
	if len(segs) != 1 || segs[0].Key != "2" {
		t.Fatalf("expected only unit 2, got %v", segs)
	}
}

func TestNormalize_OrdersAndDedupes(t *testing.T) {
	in := []segment.Segment{
		{Key: "10", Text: "ten"},
		{Key: "2", Text: "two"},
		{Key: "intro", Text: "non-numeric"},
		{Key: "2", Text: "duplicate"},
		{Key: "1", Text: "one"},
	}
	out := segment.Normalize(in)
	want := []string{"1", "2", "10"}
	if len(out) != len(want) {
		t.Fatalf("expected %d segments, got %d: %v", len(want), len(out), out)
	}
	for i, k := range want {
		if out[i].Key != k {
			t.Errorf("position %d: expected key %s, got %s", i, k, out[i].Key)
		}
	}
	if out[1].Text != "two" {
		t.Errorf("duplicate key should keep first occurrence, got %q", out[1].Text)
	}
}

func TestSameKeySet(t *testing.T) {
	cases := []struct {
		a, b []string
		want bool
	}{
		{[]string{"1", "2"}, []string{"2", "1"}, true},
		{[]string{"1", "2"}, []string{"1", "2", "3"}, false},
		{[]string{"1", "3"}, []string{"1", "2"}, false},
		{nil, nil, true},
	}
	for _, c := range cases {
		if got := segment.SameKeySet(c.a, c.b); got != c.want {
			t.Errorf("SameKeySet(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
