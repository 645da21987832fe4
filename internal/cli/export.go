package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export journal entries as JSON",
		Long:  "Export all live journal entries as a JSON array, oldest first. Filter by kind with --kind.",
		Run:   runExport,
	}

	cmd.Flags().String("kind", "", "Filter by kind: prompt, dialogue")

	journalCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.ExportAll(cmd.Context(), parseKind(kind))
	if err != nil {
		exitErr("export", err)
	}

	output(cmd, entries, nil)
}
