package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/model"
)

type modelRow struct {
	ID      string             `json:"id"`
	Default bool               `json:"default"`
	Profile model.ModelProfile `json:"profile"`
}

func init() {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List model profiles",
		Run:   runModelsList,
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the profile a model id resolves to",
		Args:  cobra.ExactArgs(1),
		Run:   runModelsShow,
	}

	modelsCmd.AddCommand(showCmd)
	RootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, args []string) {
	profiles, err := cfg.Profiles()
	if err != nil {
		exitErr("load profiles", err)
	}

	rows := []modelRow{}
	for _, id := range profiles.IDs() {
		p, _ := profiles.Lookup(id)
		rows = append(rows, modelRow{ID: id, Default: id == profiles.DefaultID(), Profile: p})
	}

	output(cmd, rows, func() string {
		var b strings.Builder
		for _, r := range rows {
			mark := ""
			if r.Default {
				mark = " (default)"
			}
			fmt.Fprintf(&b, "%-16s %-14s %6d  %s%s\n", r.ID, r.Profile.Tokenizer, r.Profile.MaxTokens, r.Profile.Truncation, mark)
		}
		return strings.TrimRight(b.String(), "\n")
	})
}

func runModelsShow(cmd *cobra.Command, args []string) {
	profiles, err := cfg.Profiles()
	if err != nil {
		exitErr("load profiles", err)
	}
	p, exact := profiles.Lookup(args[0])
	resolved := args[0]
	if !exact {
		resolved = profiles.DefaultID()
	}

	output(cmd, map[string]any{
		"id":         args[0],
		"exact":      exact,
		"resolvedTo": resolved,
		"profile":    p,
	}, func() string {
		return fmt.Sprintf("%s -> %s: %s, %d tokens, truncation %s", args[0], resolved, p.Tokenizer, p.MaxTokens, p.Truncation)
	})
}
