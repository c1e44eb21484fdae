/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/wikisync/internal/cache"
	"github.com/valpere/wikisync/internal/config"
	"github.com/valpere/wikisync/internal/engine"
	"github.com/valpere/wikisync/internal/l10n"
	"github.com/valpere/wikisync/internal/langcheck"
	"github.com/valpere/wikisync/internal/pipeline"
	"github.com/valpere/wikisync/internal/protect"
	"github.com/valpere/wikisync/internal/wiki"
)

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// buildPipeline assembles the full synchronization stack from config. The
// returned cleanup function closes the cache store and provider client.
func buildPipeline(ctx context.Context, cfg *config.Config, force, dryRun bool, log zerolog.Logger) (*pipeline.Pipeline, func(), error) {
	client, err := wiki.New(cfg.Wiki.APIURL, cfg.Wiki.UserAgent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create wiki client: %w", err)
	}
	if cfg.Wiki.Username != "" {
		if err := client.Login(ctx, cfg.Wiki.Username, cfg.Wiki.Password); err != nil {
			return nil, nil, fmt.Errorf("failed to log in: %w", err)
		}
	}

	store, err := cache.New(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	google, err := engine.NewGoogle(ctx, engine.GoogleConfig{
		Project:     cfg.Google.Project,
		Location:    cfg.Google.Location,
		Credentials: cfg.Google.Credentials,
		Glossaries:  cfg.Google.Glossaries,
	})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create translation engine: %w", err)
	}

	stored, err := store.Terms(ctx)
	if err != nil {
		store.Close()
		google.Close()
		return nil, nil, fmt.Errorf("failed to load glossary terms: %w", err)
	}
	terms := make([]protect.Term, 0, len(stored))
	for _, t := range stored {
		preferred := t.Preferred
		if preferred == "" {
			preferred = t.Term
		}
		terms = append(terms, protect.Term{Term: t.Term, Preferred: preferred})
	}

	var table *l10n.Table
	if cfg.StringsFile != "" {
		table, err = l10n.LoadFile(cfg.StringsFile)
	} else {
		table, err = l10n.Default()
	}
	if err != nil {
		store.Close()
		google.Close()
		return nil, nil, fmt.Errorf("failed to load string table: %w", err)
	}

	opts := pipeline.Options{
		SourceLang:    cfg.SourceLang,
		KnownLangs:    append([]string{cfg.SourceLang}, cfg.TargetLangs...),
		Terms:         terms,
		StrictMarkers: cfg.StrictMarkers,
		Disclaimer:    cfg.Disclaimer,
		Strings:       table,
		Force:         force,
		DryRun:        dryRun || cfg.DryRun,
	}

	p := pipeline.New(client, store, google, langcheck.New(), opts, log)
	cleanup := func() {
		store.Close()
		google.Close()
	}
	return p, cleanup, nil
}
