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
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/valpere/wikisync/internal/config"
	"github.com/valpere/wikisync/internal/queue"
)

var (
	enqueueLangs []string
	enqueuePrune bool
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue PAGE [PAGE...]",
	Short: "Queue pages for synchronization",
	Long: `Add synchronization jobs to the Postgres queue, one per page and
target language. A page/language pair that already has a pending or
running job is skipped.

With --prune, pending jobs for languages no longer in target_langs are
removed first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("database_url is required for the queue")
		}
		langs := enqueueLangs
		if len(langs) == 0 {
			langs = cfg.TargetLangs
		}

		ctx := context.Background()
		q, err := queue.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer q.Close()

		if enqueuePrune {
			pruned, err := q.PruneLangs(ctx, cfg.TargetLangs)
			if err != nil {
				return err
			}
			if pruned > 0 {
				fmt.Printf("pruned %d jobs for dropped languages\n", pruned)
			}
		}

		var created, skipped int
		for _, page := range args {
			for _, lang := range langs {
				_, ok, err := q.Enqueue(ctx, page, lang)
				if err != nil {
					return err
				}
				if ok {
					created++
				} else {
					skipped++
				}
			}
		}
		fmt.Printf("queued %d jobs, %d already queued\n", created, skipped)

		counts, err := q.Counts(ctx)
		if err != nil {
			return err
		}
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Printf("  %s: %d\n", s, counts[s])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)

	enqueueCmd.Flags().StringSliceVarP(&enqueueLangs, "langs", "l", nil, "Target languages (default: configured target_langs)")
	enqueueCmd.Flags().BoolVar(&enqueuePrune, "prune", false, "Remove pending jobs for languages not in target_langs")
}
