package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		Run:   runList,
	}

	cmd.Flags().String("kind", "", "Filter by kind: prompt, dialogue")
	cmd.Flags().StringP("model", "m", "", "Filter by model id")
	cmd.Flags().String("batch", "", "Filter by scenes batch id")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	journalCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	modelID, _ := cmd.Flags().GetString("model")
	batch, _ := cmd.Flags().GetString("batch")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		Kind:  parseKind(kind),
		Model: modelID,
		Batch: batch,
		Limit: limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	output(cmd, entries, func() string { return entryLines(entries) })
}
