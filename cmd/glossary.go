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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/wikisync/internal/cache"
)

var glossaryDBPath string

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage do-not-translate terms",
	Long: `Add, list, and delete do-not-translate terms.

Terms are protected before translation so the provider never sees them.
A term without a preferred rendering is kept verbatim in every target
language, which suits proper nouns, product names, and template names.`,
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all do-not-translate terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		terms, err := db.Terms(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list terms: %w", err)
		}

		if len(terms) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM\tPREFERRED")
		for _, t := range terms {
			preferred := t.Preferred
			if preferred == "" {
				preferred = "(verbatim)"
			}
			fmt.Fprintf(w, "%s\t%s\n", t.Term, preferred)
		}
		return w.Flush()
	},
}

var glossaryAddPreferred string

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term>",
	Short: "Add or update a do-not-translate term",
	Long: `Add a term that must survive translation untouched.

Example:
  wikisync glossary add "Kubernetes"
  wikisync glossary add "Acme Corp" --preferred "Acme"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.UpsertTerm(context.Background(), args[0], glossaryAddPreferred); err != nil {
			return fmt.Errorf("failed to add term: %w", err)
		}
		if glossaryAddPreferred != "" {
			fmt.Printf("Added: %q -> %q\n", args[0], glossaryAddPreferred)
		} else {
			fmt.Printf("Added: %q (kept verbatim)\n", args[0])
		}
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Delete a do-not-translate term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		deleted, err := db.DeleteTerm(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete term: %w", err)
		}
		if !deleted {
			fmt.Printf("No such term: %q\n", args[0])
			return nil
		}
		fmt.Printf("Deleted term: %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.PersistentFlags().StringVar(&glossaryDBPath, "db", "wikisync.db", "Database path")

	glossaryAddCmd.Flags().StringVar(&glossaryAddPreferred, "preferred", "", "Preferred rendering to restore in translated text")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
