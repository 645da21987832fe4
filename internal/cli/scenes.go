package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/scene"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "Prepare prompts and dialogue for a batch of scenes",
		Long:  "Read a project file (JSON or YAML) and adapt every scene's prompt and dialogue.",
		Run:   runScenes,
	}

	cmd.Flags().String("file", "", "Project file (.json, .yaml); - for JSON on stdin")
	cmd.Flags().String("model", "", "Override the project's model id")
	cmd.Flags().Bool("shared-voices", false, "Keep one voice table across all scenes")
	cmd.Flags().Bool("record", false, "Record every scene in the journal")
	cmd.MarkFlagRequired("file")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a project file",
		Run: func(cmd *cobra.Command, args []string) {
			output(cmd, scene.Schema(), nil)
		},
	}

	cmd.AddCommand(schemaCmd)
	RootCmd.AddCommand(cmd)
}

func runScenes(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	modelID, _ := cmd.Flags().GetString("model")
	shared, _ := cmd.Flags().GetBool("shared-voices")
	record, _ := cmd.Flags().GetBool("record")

	data, err := readInput(cmd, file)
	if err != nil {
		exitErr("read project", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	p, err := scene.Parse(data, format)
	if err != nil {
		exitErr("parse project", err)
	}

	if modelID != "" {
		p.Model = modelID
	}
	if p.Model == "" {
		p.Model = cfg.DefaultModel
	}
	if p.NarratorVoice == "" {
		p.NarratorVoice = cfg.NarratorVoice
	}
	if shared {
		p.SharedVoices = true
	}

	a, err := cfg.Adapter()
	if err != nil {
		exitErr("load profiles", err)
	}
	asm, err := cfg.Assembler()
	if err != nil {
		exitErr("configure assembler", err)
	}
	res := scene.NewPreparer(a, asm).Prepare(p)

	if record {
		recordEntries(cmd.Context(), res.JournalEntries(uuid.NewString())...)
	}

	output(cmd, res, func() string {
		var b strings.Builder
		for _, sr := range res.Scenes {
			fmt.Fprintf(&b, "== %s (%d turns, %.2fs)\n%s\n", sr.ID, sr.Dialogue.Statistics.TurnCount, sr.Dialogue.EstimatedDuration, sr.Prompt)
			for _, w := range sr.Warnings {
				fmt.Fprintf(&b, "  warning: %s\n", w)
			}
		}
		fmt.Fprintf(&b, "%d scenes, %d compressed prompts, %.2fs total", res.Totals.Scenes, res.Totals.CompressedPrompts, res.Totals.EstimatedDuration)
		return b.String()
	})
}
