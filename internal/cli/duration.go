package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/scene-adapter/internal/dialogue"
)

func init() {
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Estimate the spoken length of segments",
		Run:   runDuration,
	}

	cmd.Flags().String("file", "-", "Segments file; - for stdin")
	cmd.Flags().Float64("wpm", 0, "Words per minute (default: configured rate)")

	RootCmd.AddCommand(cmd)
}

func runDuration(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	wpm, _ := cmd.Flags().GetFloat64("wpm")
	if !cmd.Flags().Changed("wpm") {
		wpm = cfg.WordsPerMinute
	}

	data, err := readInput(cmd, file)
	if err != nil {
		exitErr("read segments", err)
	}
	doc, err := parseSegments(data)
	if err != nil {
		exitErr("parse segments", err)
	}
	segs := dialogue.NormalizeAll(doc.Segments)

	secs, err := dialogue.EstimateDuration(segs, wpm)
	if err != nil {
		exitErr("duration", err)
	}

	output(cmd, map[string]any{
		"seconds":        secs,
		"wordsPerMinute": wpm,
		"segments":       len(segs),
		"wordCount":      dialogue.WordCount(segs),
	}, func() string {
		return strconv.FormatFloat(secs, 'f', 2, 64)
	})
}
