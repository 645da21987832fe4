// Package cli implements the scene-adapter CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/config"
	"github.com/rcliao/scene-adapter/internal/logger"
	"github.com/rcliao/scene-adapter/internal/store"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	formatFlag string

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "scene-adapter",
	Short: "Fit prompts and dialogue to generation model limits",
	Long: "Adapts visual prompts to a model's token budget and assembles multi-speaker\n" +
		"dialogue into a timed, voice-resolved script. Text or JSON in, JSON out.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $SCENE_ADAPTER_CONFIG or ~/.scene-adapter/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Journal database path (default: $SCENE_ADAPTER_DB or ~/.scene-adapter/journal.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "Log level: trace, debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)

	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("invalid format %q (valid: json, text)", formatFlag)
	}
	return nil
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// output writes v as indented JSON, or text() when --format text is set and
// text is non-nil.
func output(cmd *cobra.Command, v any, text func() string) {
	w := cmd.OutOrStdout()
	if formatFlag == "text" && text != nil {
		fmt.Fprintln(w, text())
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		exitErr("encode output", err)
	}
}

// readText returns the positional args joined, or piped stdin.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
