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
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/wikisync/internal/config"
	"github.com/valpere/wikisync/internal/queue"
)

var (
	workerOnce bool
	workerPoll time.Duration
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued synchronization jobs",
	Long: `Claim jobs from the Postgres queue and run the synchronization
pipeline for each. Multiple workers may run against the same queue;
claims use row locks so no job is processed twice.

The worker runs until interrupted. With --once it drains the queue
and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("database_url is required for the worker")
		}

		log := newLogger()
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		q, err := queue.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer q.Close()

		p, cleanup, err := buildPipeline(ctx, cfg, false, cfg.DryRun, log)
		if err != nil {
			return err
		}
		defer cleanup()

		for {
			job, err := q.Next(ctx)
			if err != nil {
				return err
			}
			if job == nil {
				if workerOnce {
					log.Info().Msg("queue drained")
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(workerPoll):
				}
				continue
			}

			jlog := log.With().
				Stringer("job", job.ID).
				Str("page", job.Document).
				Str("lang", job.Lang).
				Logger()
			res, err := p.Run(ctx, job.Document, job.Lang)
			if err != nil {
				jlog.Error().Err(err).Msg("job failed")
				if merr := q.MarkError(ctx, job.ID, err.Error(), cfg.MaxRetries); merr != nil {
					return merr
				}
				continue
			}
			jlog.Info().
				Str("outcome", string(res.Outcome)).
				Int("writes", res.Writes).
				Int("cache_hits", res.CacheHits).
				Msg("job done")
			if err := q.MarkDone(ctx, job.ID); err != nil {
				return err
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "Exit when the queue is empty")
	workerCmd.Flags().DurationVar(&workerPoll, "poll", 5*time.Second, "Poll interval when the queue is empty")
}
