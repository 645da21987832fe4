package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Run:   runStats,
	}

	journalCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	output(cmd, stats, func() string {
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Fprintf(&b, "%d entries (%d active), %d compressed prompts\n", stats.TotalEntries, stats.ActiveEntries, stats.CompressedPrompts)
		for _, k := range stats.Kinds {
			fmt.Fprintf(&b, "  kind  %-16s %d\n", k.Name, k.Count)
		}
		for _, m := range stats.Models {
			fmt.Fprintf(&b, "  model %-16s %d\n", m.Name, m.Count)
		}
		return strings.TrimRight(b.String(), "\n")
	})
}
