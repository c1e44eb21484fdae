// Package pipeline composes one synchronization run for a (document,
// language) pair: extract segments, apply the review-status gate, partition
// against the checksum cache, protect and translate what remains, restore
// and localize markup, rebuild the metadata preamble, and perform verified
// writes. Stages run strictly in order; only the status gate can
// short-circuit a run.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valpere/wikisync/internal/cache"
	"github.com/valpere/wikisync/internal/engine"
	"github.com/valpere/wikisync/internal/l10n"
	"github.com/valpere/wikisync/internal/langcheck"
	"github.com/valpere/wikisync/internal/links"
	"github.com/valpere/wikisync/internal/metadata"
	"github.com/valpere/wikisync/internal/protect"
	"github.com/valpere/wikisync/internal/segment"
	"github.com/valpere/wikisync/internal/status"
	"github.com/valpere/wikisync/internal/wiki"
	"github.com/valpere/wikisync/internal/writer"
)

// ContentStore is the wiki surface the pipeline needs. *wiki.Client
// satisfies it.
type ContentStore interface {
	Page(ctx context.Context, title string) (wiki.Page, error)
	UnitCollection(ctx context.Context, document, lang string) ([]wiki.Unit, error)
	PageProps(ctx context.Context, title string) (map[string]string, error)
	Edit(ctx context.Context, title, text, summary string) (wiki.EditResult, error)
	ApproveRevision(ctx context.Context, rev int64) error
	Purge(ctx context.Context, title string) error
}

// CacheStore is the translation cache surface. *cache.Cache satisfies it.
type CacheStore interface {
	Checksums(ctx context.Context, document string) (map[string]string, error)
	Translation(ctx context.Context, document, key, lang string) (cache.Translation, bool, error)
	TranslationByChecksum(ctx context.Context, checksum, lang string) (string, bool, error)
	UpsertSegment(ctx context.Context, document, key, sourceText string) error
	UpsertTranslation(ctx context.Context, document, key, lang, checksum, translatedText, engine string) error
	Clear(ctx context.Context, document string) (int64, error)
}

// Options tune one pipeline instance.
type Options struct {
	SourceLang string
	// KnownLangs are every language suffix the system may have produced;
	// link rewriting strips them before suffixing.
	KnownLangs []string
	// Terms is the do-not-translate glossary.
	Terms []protect.Term
	// StrictMarkers are markup fragments that must be present in a cached
	// translation if and only if present in the current source segment.
	StrictMarkers []string
	// Disclaimer inserts the localized machine-translation notice box into
	// the metadata segment.
	Disclaimer bool
	Strings    *l10n.Table
	// Force re-translates pages already marked outdated.
	Force bool
	// DryRun skips all writes and reports what would have been written.
	DryRun bool
}

type Pipeline struct {
	store   ContentStore
	cache   CacheStore
	engine  engine.Engine
	writer  *writer.Writer
	checker *langcheck.Checker
	opts    Options
	log     zerolog.Logger
}

// New builds a pipeline. checker may be nil to skip the post-translation
// language sanity check.
func New(store ContentStore, cacheStore CacheStore, eng engine.Engine, checker *langcheck.Checker, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		cache:   cacheStore,
		engine:  eng,
		writer:  writer.New(store),
		checker: checker,
		opts:    opts,
		log:     log,
	}
}

// Outcome classifies how a run ended. Lock outcomes are not errors.
type Outcome string

const (
	OutcomeSynced          Outcome = "synced"
	OutcomeLockedReviewed  Outcome = "locked_reviewed"
	OutcomeLockedOutdated  Outcome = "locked_outdated"
	OutcomeMarkedOutdated  Outcome = "outdated"
	OutcomeSkippedRedirect Outcome = "skipped_redirect"
)

// Result summarises one run.
type Result struct {
	RunID         uuid.UUID
	Outcome       Outcome
	Segments      int
	Writes        int
	NoOps         int
	CacheHits     int
	ProviderCalls int
	Retries       int
}

// RunError reports which stage failed, and for which segment key when one
// is implicated.
type RunError struct {
	Stage   string
	Segment string
	Err     error
}

func (e *RunError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s failed for segment %s: %v", e.Stage, e.Segment, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

func fail(stage, seg string, err error) *RunError {
	return &RunError{Stage: stage, Segment: seg, Err: err}
}

var (
	redirectRe     = regexp.MustCompile(`(?i)^\s*#redirect`)
	displayTitleRe = regexp.MustCompile(`(?i)\{\{\s*DISPLAYTITLE\s*:\s*([^{}]*?)\s*\}\}`)
	disclaimerMark = "<!--BOT_DISCLAIMER-->"
)

// Run synchronizes the translation of document into lang.
func (p *Pipeline) Run(ctx context.Context, document, lang string) (*Result, error) {
	res := &Result{RunID: uuid.New(), Outcome: OutcomeSynced}
	log := p.log.With().
		Stringer("run", res.RunID).
		Str("page", document).
		Str("lang", lang).
		Logger()

	// Stage 1: read the source page and extract segments.
	page, err := p.store.Page(ctx, document)
	if err != nil {
		return nil, fail("extract", "", err)
	}
	if page.Missing {
		return nil, fail("extract", "", fmt.Errorf("page %q does not exist", document))
	}
	if redirectRe.MatchString(page.Text) {
		log.Info().Msg("redirect page, skipping")
		res.Outcome = OutcomeSkippedRedirect
		return res, nil
	}
	currentRev := strconv.FormatInt(page.Rev, 10)

	segments, fuzzy, prior := p.extract(ctx, document, lang, page.Text, log)
	if len(segments) == 0 {
		return nil, fail("extract", "", fmt.Errorf("no translatable segments in %q", document))
	}
	res.Segments = len(segments)
	metaKey := segments[0].Key
	log.Info().Int("segments", len(segments)).Str("rev", currentRev).Msg("extracted")

	// Stage 2: status gate.
	translatedTitle := document + "/" + lang
	translatedPage, err := p.store.Page(ctx, translatedTitle)
	if err != nil {
		return nil, fail("status", "", err)
	}
	meta := p.mergeStatus(ctx, translatedTitle, translatedPage.Text, prior[metaKey], log)

	switch gate := status.Gate(meta, currentRev); gate {
	case status.OutcomeLockedReviewed:
		log.Info().Msg("reviewed translation is current, locked")
		res.Outcome = OutcomeLockedReviewed
		return res, nil
	case status.OutcomeLockedOutdated:
		if !p.opts.Force {
			log.Info().Msg("translation marked outdated, locked")
			res.Outcome = OutcomeLockedOutdated
			return res, nil
		}
		log.Info().Msg("forced run on outdated translation")
	case status.OutcomeOutdated:
		if err := p.markOutdated(ctx, document, lang, metaKey, prior[metaKey], meta, currentRev, res); err != nil {
			return nil, err
		}
		log.Info().Msg("reviewed translation is stale, marked outdated")
		res.Outcome = OutcomeMarkedOutdated
		return res, nil
	}

	// Stage 3: cache partition.
	texts, fresh := p.partition(ctx, document, lang, segments, res, log)

	// Stage 4: protect, translate, restore.
	targets, displays, title, err := p.translate(ctx, document, lang, segments, translatedPage.Text, texts, fresh, res, log)
	if err != nil {
		return nil, err
	}

	// Stage 5: localize links in freshly translated segments.
	loc := &links.Localizer{
		Lang:       lang,
		KnownLangs: p.opts.KnownLangs,
		Targets:    targets,
		Displays:   displays,
	}
	for key := range fresh {
		texts[key] = loc.Rewrite(texts[key])
	}

	// Stage 6: metadata preamble.
	newMeta := status.Meta{Status: status.Machine, SourceRevAtTranslation: currentRev}
	texts[metaKey] = p.compose(document, lang, texts[metaKey], newMeta.Template(), title)

	// Stage 7: verified writes.
	if err := p.write(ctx, document, lang, segments, texts, fresh, fuzzy, prior, metaKey, currentRev, res, log); err != nil {
		return nil, err
	}

	// Stage 8: persist the cache.
	p.persist(ctx, document, lang, segments, texts, fresh, log)

	log.Info().
		Int("writes", res.Writes).
		Int("noops", res.NoOps).
		Int("cache_hits", res.CacheHits).
		Int("provider_calls", res.ProviderCalls).
		Int("retries", res.Retries).
		Msg("run complete")
	return res, nil
}

// extract returns the normalized source segments plus, per key, the fuzzy
// flag and the current translation from the unit collection. Falls back to
// marker splitting when the collection is unavailable.
func (p *Pipeline) extract(ctx context.Context, document, lang, raw string, log zerolog.Logger) ([]segment.Segment, map[string]bool, map[string]string) {
	fuzzy := make(map[string]bool)
	prior := make(map[string]string)

	units, err := p.store.UnitCollection(ctx, document, lang)
	if err != nil || len(units) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("unit collection unavailable, splitting markers")
		}
		return segment.Normalize(segment.SplitMarkers(raw)), fuzzy, prior
	}

	segs := make([]segment.Segment, 0, len(units))
	for _, u := range units {
		segs = append(segs, segment.Segment{Key: u.Key, Text: u.Definition})
		fuzzy[u.Key] = u.Fuzzy
		prior[u.Key] = u.Translation
	}
	return segment.Normalize(segs), fuzzy, prior
}

// mergeStatus merges status metadata from the three sources in precedence
// order: page properties, the annotation in the rendered translated page,
// and the status template in the prior metadata unit. Read failures count
// as absent sources, never as fatal.
func (p *Pipeline) mergeStatus(ctx context.Context, translatedTitle, translatedText, priorMetaUnit string, log zerolog.Logger) status.Meta {
	return status.Merge([]status.Source{
		{Name: "props", Lookup: func() (status.Meta, bool) {
			props, err := p.store.PageProps(ctx, translatedTitle)
			if err != nil {
				log.Warn().Err(err).Msg("page props unavailable")
				return status.Meta{}, false
			}
			return status.FromProps(props)
		}},
		{Name: "page", Lookup: func() (status.Meta, bool) {
			return status.ParseTemplate(translatedText)
		}},
		{Name: "unit", Lookup: func() (status.Meta, bool) {
			return status.ParseTemplate(priorMetaUnit)
		}},
	})
}

// markOutdated persists the reviewed→outdated transition on the metadata
// unit. It is the only write performed for such a run.
func (p *Pipeline) markOutdated(ctx context.Context, document, lang, metaKey, priorText string, meta status.Meta, currentRev string, res *Result) error {
	meta.Status = status.Outdated
	meta.OutdatedSourceRev = currentRev

	// When the unit collection gave no prior text (unavailable, or marker
	// fallback extraction), the metadata unit may still exist on the wiki;
	// read it so the transition replaces only the status template and never
	// the display title or body.
	if priorText == "" {
		unit, err := p.store.Page(ctx, wiki.UnitTitle(document, metaKey, lang))
		if err != nil {
			return fail("status", metaKey, err)
		}
		if !unit.Missing {
			priorText = unit.Text
		}
	}

	text := metadata.UpsertStatus(priorText, meta.Template())
	if p.opts.DryRun {
		res.Writes++
		return nil
	}
	w, err := p.writer.Write(ctx, wiki.UnitTitle(document, metaKey, lang), text,
		"Marking translation outdated: source revision "+currentRev, false)
	if err != nil {
		return fail("status", metaKey, err)
	}
	if w.Written {
		res.Writes++
	}
	res.Retries += w.Retries
	return nil
}

// partition serves segments from the checksum cache where possible and
// returns the final text map plus the set of keys still needing
// translation. Non-linguistic segments copy through unconditionally.
func (p *Pipeline) partition(ctx context.Context, document, lang string, segments []segment.Segment, res *Result, log zerolog.Logger) (map[string]string, map[string]bool) {
	texts := make(map[string]string, len(segments))
	fresh := make(map[string]bool)

	cached, err := p.cache.Checksums(ctx, document)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, translating everything")
		cached = nil
	}

	// A changed key set means units were added, removed, split or merged;
	// stitching cached fragments into a restructured document is unsafe.
	// Cross-document (L2) hits stay available for documents never cached.
	useCache := true
	if len(cached) > 0 && !segment.SameKeySet(segment.Keys(segments), mapKeys(cached)) {
		useCache = false
		log.Info().Msg("segment key set changed, cache disabled for this run")
	}

	for _, seg := range segments {
		if nonLinguistic(seg.Text) {
			texts[seg.Key] = seg.Text
			continue
		}
		if useCache {
			if text, ok := p.lookup(ctx, document, seg, lang); ok {
				texts[seg.Key] = text
				res.CacheHits++
				continue
			}
		}
		fresh[seg.Key] = true
	}
	return texts, fresh
}

// lookup tries the exact document+key entry first, then any entry with the
// same checksum and language. Either hit must be structurally compatible
// with the current source.
func (p *Pipeline) lookup(ctx context.Context, document string, seg segment.Segment, lang string) (string, bool) {
	sum := cache.Checksum(seg.Text)

	if tr, ok, err := p.cache.Translation(ctx, document, seg.Key, lang); err == nil && ok {
		if tr.Checksum == sum && p.compatible(seg.Text, tr.Text) {
			return tr.Text, true
		}
	}
	if text, ok, err := p.cache.TranslationByChecksum(ctx, sum, lang); err == nil && ok {
		if p.compatible(seg.Text, text) {
			return text, true
		}
	}
	return "", false
}

// compatible reports whether every strict structural marker appears in the
// cached translation exactly when it appears in the source.
func (p *Pipeline) compatible(source, cached string) bool {
	for _, marker := range p.opts.StrictMarkers {
		if strings.Contains(source, marker) != strings.Contains(cached, marker) {
			return false
		}
	}
	return true
}

// displayRequest is one string queued for the secondary translation batch.
type displayRequest struct {
	text string
	// exactly one of these is set
	title   bool
	display *protect.LinkDisplay
	segKey  string
	target  string // link target whose localized label this is
}

// translate protects and machine-translates every fresh segment, restores
// the markup, and returns the link target set, localized display map and
// translated document title for the later stages.
func (p *Pipeline) translate(ctx context.Context, document, lang string, segments []segment.Segment, translatedPageText string, texts map[string]string, fresh map[string]bool, res *Result, log zerolog.Logger) (map[string]bool, map[string]string, string, error) {
	targets := make(map[string]bool)
	displays := make(map[string]string)

	// Protect fresh segments in document order.
	var order []string
	protected := make(map[string]protect.Result)
	source := make(map[string]string)
	for _, seg := range segments {
		if !fresh[seg.Key] {
			continue
		}
		order = append(order, seg.Key)
		source[seg.Key] = seg.Text
		pr := protect.Segment(seg.Text, lang, p.opts.KnownLangs, p.opts.Terms, false)
		protected[seg.Key] = pr
		for _, t := range pr.Targets {
			targets[t] = true
		}
	}

	title := p.documentTitle(ctx, document, lang, translatedPageText, len(order) == 0)

	if len(order) == 0 {
		return targets, displays, title, nil
	}

	// Primary batch: one array element per fresh segment.
	batch := make([]string, len(order))
	for i, key := range order {
		batch[i] = protected[key].Text
	}
	out, err := p.engine.Translate(ctx, batch, p.opts.SourceLang, lang)
	if err != nil {
		return nil, nil, "", fail("translate", "", err)
	}
	res.ProviderCalls++

	// Secondary batch: document title, explicit link displays, and leaf
	// labels for targets without an already-localized display title.
	var reqs []displayRequest
	if title == "" {
		reqs = append(reqs, displayRequest{text: document, title: true})
	}
	for _, key := range order {
		pr := protected[key]
		for i := range pr.Displays {
			// A display matching a do-not-translate term never reaches the
			// provider; its preferred form goes straight into the link.
			if preferred, ok := p.glossaryDisplay(pr.Displays[i].Display); ok {
				pr.Placeholders[pr.Displays[i].Token] = fmt.Sprintf("[[%s|%s]]", pr.Displays[i].Target, preferred)
				continue
			}
			reqs = append(reqs, displayRequest{text: pr.Displays[i].Display, display: &pr.Displays[i], segKey: key})
		}
	}
	for target := range targets {
		if localized := p.localizedTitle(ctx, target, lang); localized != "" {
			displays[target] = localized
			continue
		}
		reqs = append(reqs, displayRequest{text: leaf(target), target: target})
	}

	if len(reqs) > 0 {
		batch = make([]string, len(reqs))
		for i, r := range reqs {
			batch[i] = r.text
		}
		out2, err := p.engine.Translate(ctx, batch, p.opts.SourceLang, lang)
		if err != nil {
			return nil, nil, "", fail("translate", "", err)
		}
		res.ProviderCalls++

		for i, r := range reqs {
			switch {
			case r.title:
				title = out2[i]
			case r.display != nil:
				// Swap the translated label into the link's placeholder
				// value before restoration.
				pr := protected[r.segKey]
				pr.Placeholders[r.display.Token] = fmt.Sprintf("[[%s|%s]]", r.display.Target, out2[i])
			default:
				displays[r.target] = out2[i]
			}
		}
	}

	// Restore each segment, falling back to fully opaque links when the
	// provider dropped a link token.
	for i, key := range order {
		restored, err := p.restore(ctx, document, lang, key, source[key], out[i], protected[key], res, log)
		if err != nil {
			return nil, nil, "", err
		}
		texts[key] = restored
	}
	return targets, displays, title, nil
}

// restore substitutes tokens back, repairs provider damage and runs the
// language sanity check.
func (p *Pipeline) restore(ctx context.Context, document, lang, key, src, translated string, pr protect.Result, res *Result, log zerolog.Logger) (string, error) {
	if missing := protect.MissingTokens(translated, pr.RequiredLinks); len(missing) > 0 {
		log.Warn().Str("segment", key).Strs("tokens", missing).Msg("provider dropped link tokens, retrying opaque")
		opaque := protect.Segment(src, lang, p.opts.KnownLangs, p.opts.Terms, true)
		out, err := p.engine.Translate(ctx, []string{opaque.Text}, p.opts.SourceLang, lang)
		if err != nil {
			return "", fail("translate", key, err)
		}
		res.ProviderCalls++
		translated = out[0]
		if still := protect.MissingTokens(translated, opaque.RequiredLinks); len(still) > 0 {
			return "", fail("restore", key, fmt.Errorf("link tokens %v lost even with opaque links", still))
		}
		pr = opaque
	}

	text := protect.Restore(translated, pr.Placeholders)
	text = protect.ReinsertMissing(src, text)
	text = protect.RestoreHTMLTags(src, text)
	text = protect.RestoreCategoryNamespace(src, text)
	text = protect.RestoreFileLinks(src, text)
	text = protect.StripIndent(text)
	text = protect.StripEmptyParagraphs(text)
	text = protect.StripUnresolved(text)
	text = metadata.CollapseBlankLines(text)
	text = metadata.NormalizeHeadingSpacing(text)

	if p.checker != nil {
		if check := p.checker.Check(text, lang); !check.OK {
			log.Warn().Str("segment", key).Str("detected", check.Detected).Msg("translated text does not read as target language")
		}
	}
	return text, nil
}

// documentTitle resolves the translated display title: an existing
// display-title directive in the translated page wins, then a glossary term
// matching the document name; otherwise empty, meaning the title joins the
// secondary translation batch. allCached suppresses the batch path on runs
// with nothing to translate.
func (p *Pipeline) documentTitle(ctx context.Context, document, lang, translatedPageText string, allCached bool) string {
	if m := displayTitleRe.FindStringSubmatch(translatedPageText); m != nil && m[1] != "" {
		return m[1]
	}
	for _, term := range p.opts.Terms {
		if strings.EqualFold(term.Term, document) {
			return term.Preferred
		}
	}
	if allCached {
		// Nothing fresh to translate; keep the untranslated title rather
		// than spend a provider call on it.
		return document
	}
	return ""
}

// glossaryDisplay returns the preferred form for a link label matching a
// do-not-translate term.
func (p *Pipeline) glossaryDisplay(label string) (string, bool) {
	for _, term := range p.opts.Terms {
		if strings.EqualFold(term.Term, label) {
			if term.Preferred != "" {
				return term.Preferred, true
			}
			return term.Term, true
		}
	}
	return "", false
}

// localizedTitle reads the display title of target's existing translation
// into lang, if that translation exists.
func (p *Pipeline) localizedTitle(ctx context.Context, target, lang string) string {
	page, err := p.store.Page(ctx, target+"/"+lang)
	if err != nil || page.Missing {
		return ""
	}
	if m := displayTitleRe.FindStringSubmatch(page.Text); m != nil {
		return m[1]
	}
	return ""
}

// compose rebuilds the metadata preamble and manages the disclaimer box.
func (p *Pipeline) compose(document, lang, metaText, statusTemplate, title string) string {
	text := metadata.RemoveDisclaimerTables(metaText)
	text = metadata.Compose(text, statusTemplate, title)

	if p.opts.Disclaimer && p.opts.Strings != nil {
		box := p.opts.Strings.Disclaimer(lang, document)
		if strings.Contains(text, disclaimerMark) {
			text = strings.Replace(text, disclaimerMark, box, 1)
		} else {
			text = metadata.InsertAfterPreamble(text, box)
		}
	}
	return metadata.CollapseBlankLines(text)
}

// write pushes the writable set: freshly translated segments, the metadata
// segment, segments the store reports fuzzy, and cache-served segments the
// store holds no translation for yet. Cached, clean, already-stored
// segments are left alone.
func (p *Pipeline) write(ctx context.Context, document, lang string, segments []segment.Segment, texts map[string]string, fresh, fuzzy map[string]bool, prior map[string]string, metaKey, currentRev string, res *Result, log zerolog.Logger) error {
	summary := "Machine translation sync from source revision " + currentRev

	var writtenRevs []int64
	for _, seg := range segments {
		if !fresh[seg.Key] && seg.Key != metaKey && !fuzzy[seg.Key] && prior[seg.Key] != "" {
			continue
		}
		text, ok := texts[seg.Key]
		if !ok {
			continue
		}
		if p.opts.DryRun {
			log.Info().Str("segment", seg.Key).Msg("dry run, would write")
			res.Writes++
			continue
		}

		w, err := p.writer.Write(ctx, wiki.UnitTitle(document, seg.Key, lang), text, summary, fuzzy[seg.Key])
		if err != nil {
			return fail("write", seg.Key, err)
		}
		res.Retries += w.Retries
		if w.NoOp {
			res.NoOps++
			continue
		}
		res.Writes++
		if w.Rev != 0 {
			writtenRevs = append(writtenRevs, w.Rev)
		}
	}

	// Review approval and the page purge are best-effort.
	for _, rev := range writtenRevs {
		if err := p.store.ApproveRevision(ctx, rev); err != nil {
			log.Warn().Err(err).Int64("rev", rev).Msg("failed to approve revision")
		}
	}
	if res.Writes > 0 && !p.opts.DryRun {
		if err := p.store.Purge(ctx, document+"/"+lang); err != nil {
			log.Warn().Err(err).Msg("failed to purge translated page")
		}
	}
	return nil
}

// persist records the run in the cache: current source checksums for every
// segment, and the translated text of every freshly translated one.
func (p *Pipeline) persist(ctx context.Context, document, lang string, segments []segment.Segment, texts map[string]string, fresh map[string]bool, log zerolog.Logger) {
	if p.opts.DryRun {
		return
	}

	// On a restructured document the old rows describe a key set that no
	// longer exists.
	if cached, err := p.cache.Checksums(ctx, document); err == nil && len(cached) > 0 {
		if !segment.SameKeySet(segment.Keys(segments), mapKeys(cached)) {
			if _, err := p.cache.Clear(ctx, document); err != nil {
				log.Warn().Err(err).Msg("failed to clear stale cache rows")
			}
		}
	}

	for _, seg := range segments {
		if err := p.cache.UpsertSegment(ctx, document, seg.Key, seg.Text); err != nil {
			log.Warn().Err(err).Str("segment", seg.Key).Msg("failed to cache segment")
			continue
		}
		if !fresh[seg.Key] {
			continue
		}
		sum := cache.Checksum(seg.Text)
		if err := p.cache.UpsertTranslation(ctx, document, seg.Key, lang, sum, texts[seg.Key], p.engine.Name()); err != nil {
			log.Warn().Err(err).Str("segment", seg.Key).Msg("failed to cache translation")
		}
	}
}

// nonLinguistic reports whether text contains no letters at all (pure
// markup or numbers); such segments copy through without translation.
func nonLinguistic(text string) bool {
	return !strings.ContainsFunc(text, unicode.IsLetter)
}

// leaf returns the last path component of a page name.
func leaf(page string) string {
	if i := strings.LastIndex(page, "/"); i >= 0 {
		return page[i+1:]
	}
	return page
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
