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

	"github.com/spf13/cobra"

	"github.com/valpere/wikisync/internal/config"
)

var (
	syncPage  string
	syncLangs []string
	syncForce bool
	syncDry   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize one page's translations",
	Long: `Run the full synchronization pipeline for a single page into one or
more target languages.

A reviewed translation whose source has not changed is never touched;
a reviewed translation whose source has changed is marked outdated and
left for human re-review. Use --force to re-machine-translate a page
already marked outdated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		langs := syncLangs
		if len(langs) == 0 {
			langs = cfg.TargetLangs
		}

		log := newLogger()
		ctx := context.Background()
		p, cleanup, err := buildPipeline(ctx, cfg, syncForce, syncDry, log)
		if err != nil {
			return err
		}
		defer cleanup()

		var failed int
		for _, lang := range langs {
			res, err := p.Run(ctx, syncPage, lang)
			if err != nil {
				log.Error().Err(err).Str("page", syncPage).Str("lang", lang).Msg("run failed")
				failed++
				continue
			}
			fmt.Printf("%s -> %s: %s (writes=%d cache_hits=%d provider_calls=%d retries=%d)\n",
				syncPage, lang, res.Outcome, res.Writes, res.CacheHits, res.ProviderCalls, res.Retries)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d language runs failed", failed, len(langs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&syncPage, "page", "p", "", "Source page title (required)")
	syncCmd.Flags().StringSliceVarP(&syncLangs, "langs", "l", nil, "Target languages (default: configured target_langs)")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-translate pages marked outdated")
	syncCmd.Flags().BoolVar(&syncDry, "dry-run", false, "Report what would be written without writing")

	syncCmd.MarkFlagRequired("page")
}
