package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"semret/internal/domain"
)

func newSearchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run one search and print the results in server order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := domain.NewQuery(strings.Join(args, " "))
			if err != nil {
				return err
			}
			logger, closeLog, err := a.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			results, err := a.client(logger).Search(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to fetch results, is the backend running? %w", err)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			if len(results) == 0 {
				fmt.Fprintln(w, "No results found.")
				return nil
			}
			fmt.Fprintf(w, "Found %d results\n\n", len(results))
			lines := lo.Map(results, func(r domain.SearchResult, i int) string {
				return fmt.Sprintf("%d. %s", i+1, stripansi.Strip(string(r)))
			})
			fmt.Fprintln(w, strings.Join(lines, "\n\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result array as JSON")
	return cmd
}
