package langcheck

import "testing"

func TestCheck(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		text   string
		target string
		wantOK bool
	}{
		{
			name:   "matching language passes",
			text:   "Este é um parágrafo de exemplo escrito inteiramente em português.",
			target: "pt",
			wantOK: true,
		},
		{
			name:   "untranslated english flagged",
			text:   "This entire paragraph is still written in plain English text.",
			target: "pt",
			wantOK: false,
		},
		{
			name:   "short text skipped",
			text:   "OK",
			target: "pt",
			wantOK: true,
		},
		{
			name:   "empty text skipped",
			text:   "   ",
			target: "fr",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Check(tt.text, tt.target)
			if res.OK != tt.wantOK {
				t.Errorf("Check(%q, %q) OK = %v (detected %q), want %v",
					tt.text, tt.target, res.OK, res.Detected, tt.wantOK)
			}
		})
	}
}
