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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/valpere/wikisync/internal/config"
	"github.com/valpere/wikisync/internal/status"
	"github.com/valpere/wikisync/internal/wiki"
)

var (
	statusPage string
	statusLang string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the review status of a translation",
	Long: `Read the review status of a page's translation by merging the three
places it may be recorded: page properties, the annotation on the
rendered translated page, and the status template in the first
translation unit. Reports what a sync run would do with it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := wiki.New(cfg.Wiki.APIURL, cfg.Wiki.UserAgent)
		if err != nil {
			return err
		}
		if cfg.Wiki.Username != "" {
			if err := client.Login(ctx, cfg.Wiki.Username, cfg.Wiki.Password); err != nil {
				return err
			}
		}

		source, err := client.Page(ctx, statusPage)
		if err != nil {
			return err
		}
		if source.Missing {
			return fmt.Errorf("page %q does not exist", statusPage)
		}
		currentRev := strconv.FormatInt(source.Rev, 10)

		translatedTitle := statusPage + "/" + statusLang
		translated, err := client.Page(ctx, translatedTitle)
		if err != nil {
			return err
		}

		var priorMetaUnit string
		units, err := client.UnitCollection(ctx, statusPage, statusLang)
		if err == nil && len(units) > 0 {
			priorMetaUnit = units[0].Translation
		}

		meta := status.Merge([]status.Source{
			{Name: "props", Lookup: func() (status.Meta, bool) {
				props, err := client.PageProps(ctx, translatedTitle)
				if err != nil {
					return status.Meta{}, false
				}
				return status.FromProps(props)
			}},
			{Name: "page", Lookup: func() (status.Meta, bool) {
				return status.ParseTemplate(translated.Text)
			}},
			{Name: "unit", Lookup: func() (status.Meta, bool) {
				return status.ParseTemplate(priorMetaUnit)
			}},
		})

		fmt.Printf("Page:             %s\n", statusPage)
		fmt.Printf("Language:         %s\n", statusLang)
		fmt.Printf("Source revision:  %s\n", currentRev)
		fmt.Printf("Status:           %s\n", meta.Status)
		if meta.SourceRevAtTranslation != "" {
			fmt.Printf("Translated at:    rev %s\n", meta.SourceRevAtTranslation)
		}
		if meta.ReviewedAt != "" {
			fmt.Printf("Reviewed:         %s by %s\n", meta.ReviewedAt, meta.ReviewedBy)
		}
		if meta.OutdatedSourceRev != "" {
			fmt.Printf("Outdated since:   rev %s\n", meta.OutdatedSourceRev)
		}

		switch status.Gate(meta, currentRev) {
		case status.OutcomeLockedReviewed:
			fmt.Println("Gate:             locked (reviewed and current)")
		case status.OutcomeLockedOutdated:
			fmt.Println("Gate:             locked (outdated; use sync --force)")
		case status.OutcomeOutdated:
			fmt.Println("Gate:             would mark outdated (reviewed but source changed)")
		default:
			fmt.Println("Gate:             would sync")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusPage, "page", "p", "", "Source page title (required)")
	statusCmd.Flags().StringVarP(&statusLang, "lang", "l", "", "Target language (required)")

	statusCmd.MarkFlagRequired("page")
	statusCmd.MarkFlagRequired("lang")
}
