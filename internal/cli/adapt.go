package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/prompt"
	"github.com/rcliao/scene-adapter/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "adapt [text]",
		Short: "Fit a prompt to a model's token budget",
		Long:  "Adapt a visual prompt for a model. Text can be a positional arg or piped via stdin.",
		Run:   runAdapt,
	}

	cmd.Flags().StringP("model", "m", "", "Model id (default: configured default model)")
	cmd.Flags().String("shot", "", "Shot type hint, e.g. close-up, wide, establishing")
	cmd.Flags().Bool("stats", false, "Include adaptation stats")
	cmd.Flags().Bool("record", false, "Record the run in the journal")
	cmd.Flags().String("label", "", "Journal label")
	cmd.Flags().String("ttl", "", "Journal retention, e.g. 7d, 24h")

	RootCmd.AddCommand(cmd)
}

func runAdapt(cmd *cobra.Command, args []string) {
	modelID, _ := cmd.Flags().GetString("model")
	shot, _ := cmd.Flags().GetString("shot")
	withStats, _ := cmd.Flags().GetBool("stats")
	record, _ := cmd.Flags().GetBool("record")
	label, _ := cmd.Flags().GetString("label")
	ttl, _ := cmd.Flags().GetString("ttl")

	text, err := readText(cmd, args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if modelID == "" {
		modelID = cfg.DefaultModel
	}

	a, err := cfg.Adapter()
	if err != nil {
		exitErr("load profiles", err)
	}
	adapted := a.AdaptPrompt(text, modelID, prompt.Context{ShotType: shot})
	stats := a.GetAdaptationStats(text, adapted, modelID)

	if record {
		recordEntries(cmd.Context(), store.RecordParams{
			Kind:       model.KindPrompt,
			Model:      modelID,
			Label:      label,
			Input:      text,
			Output:     adapted,
			Stats:      stats,
			Compressed: stats.WasCompressed,
			TTL:        ttl,
		})
	}

	var v any = map[string]any{"prompt": adapted}
	if withStats {
		v = map[string]any{"prompt": adapted, "stats": stats}
	}
	output(cmd, v, func() string {
		if !withStats {
			return adapted
		}
		return fmt.Sprintf("%s\n\n%d -> %d tokens (max %d, %s)", adapted, stats.OriginalTokens, stats.AdaptedTokens, stats.MaxTokens, stats.TokenizerMode)
	})
}

// recordEntries writes entries to the journal in one store session.
func recordEntries(ctx context.Context, entries ...store.RecordParams) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	for _, e := range entries {
		if _, err := s.Record(ctx, e); err != nil {
			exitErr("record", err)
		}
	}
}
