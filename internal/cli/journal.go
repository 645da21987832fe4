package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/model"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded adaptation runs",
	Long:  "The journal is a SQLite log of adapt, dialogue and scenes runs made with --record.",
}

func init() {
	RootCmd.AddCommand(journalCmd)
}

func parseKind(s string) model.EntryKind {
	if s == "" {
		return ""
	}
	k := model.EntryKind(strings.ToLower(s))
	if !model.ValidKinds[k] {
		exitErr("kind", fmt.Errorf("invalid kind %q (valid: prompt, dialogue)", s))
	}
	return k
}

func entryLines(entries []model.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-8s %-16s %s  %s\n", e.ID, e.Kind, e.Model, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}
