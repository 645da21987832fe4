package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search journal entries by keyword",
		Long:  "Search entry input, output and label for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("kind", "", "Filter by kind: prompt, dialogue")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	journalCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query: query,
		Kind:  parseKind(kind),
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	output(cmd, results, func() string { return entryLines(results) })
}
