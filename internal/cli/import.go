package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import journal entries from JSON",
		Long:  "Import entries from JSON (stdin or --file). Expects the format produced by export; existing ids are skipped.",
		Run:   runImport,
	}

	cmd.Flags().String("file", "-", "Export file; - for stdin")

	journalCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")

	data, err := readInput(cmd, file)
	if err != nil {
		exitErr("read input", err)
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), entries)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
