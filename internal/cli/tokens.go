package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "Estimate the token count of a prompt",
		Long:  "Estimate tokens with the tokenizer of a model's profile. Text can be a positional arg or piped via stdin.",
		Run:   runTokens,
	}

	cmd.Flags().StringP("model", "m", "", "Model id (default: configured default model)")

	RootCmd.AddCommand(cmd)
}

func runTokens(cmd *cobra.Command, args []string) {
	modelID, _ := cmd.Flags().GetString("model")
	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	text, err := readText(cmd, args)
	if err != nil {
		exitErr("read stdin", err)
	}

	a, err := cfg.Adapter()
	if err != nil {
		exitErr("load profiles", err)
	}
	p := a.GetModelConfig(modelID)
	n := a.EstimateTokens(text, modelID)

	output(cmd, struct {
		Model     string              `json:"model"`
		Tokens    int                 `json:"tokens"`
		Tokenizer model.TokenizerKind `json:"tokenizer"`
		MaxTokens int                 `json:"maxTokens"`
		Fits      bool                `json:"fits"`
	}{modelID, n, p.Tokenizer, p.MaxTokens, n <= p.MaxTokens}, func() string {
		return strconv.Itoa(n)
	})
}
