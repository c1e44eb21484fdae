// Package engine abstracts machine translation providers behind a batch
// interface. Implementations must return exactly one translation per input
// text, in input order.
package engine

import "context"

// Engine translates batches of plain-text segments.
type Engine interface {
	Name() string
	Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}
