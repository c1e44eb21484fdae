// Package langcheck sanity-checks translated segments: a segment that still
// reads as the source language probably came back untranslated.
package langcheck

import (
	"strings"
	"unicode/utf8"

	lingua "github.com/pemistahl/lingua-go"
)

// minRunes is the shortest text worth detecting; statistical detection is
// unreliable below it.
const minRunes = 20

type Checker struct {
	detector lingua.LanguageDetector
}

func New() *Checker {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Checker{detector: detector}
}

// Result is one verdict. Detected is the ISO 639-1 code of the detected
// language, empty when detection was skipped or inconclusive.
type Result struct {
	OK       bool
	Detected string
}

// Check reports whether text plausibly reads as targetLang (an ISO 639-1
// code). Short or inconclusive texts pass: the check only flags confident
// mismatches.
func (c *Checker) Check(text, targetLang string) Result {
	stripped := strings.TrimSpace(text)
	if utf8.RuneCountInString(stripped) < minRunes {
		return Result{OK: true}
	}

	lang, ok := c.detector.DetectLanguageOf(stripped)
	if !ok {
		return Result{OK: true}
	}

	detected := strings.ToLower(lang.IsoCode639_1().String())
	return Result{OK: detected == strings.ToLower(targetLang), Detected: detected}
}
