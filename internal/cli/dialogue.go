package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/scene-adapter/internal/dialogue"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/store"
)

// segmentsDoc is the accepted shape of a segments file when it is an object
// rather than a bare array.
type segmentsDoc struct {
	Segments       []json.RawMessage    `json:"segments"`
	CharacterBible model.CharacterBible `json:"character_bible"`
	NarratorVoice  string               `json:"narrator_voice"`
}

func init() {
	dialogueCmd := &cobra.Command{
		Use:   "dialogue",
		Short: "Assemble speech segments into a timed dialogue",
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve voices and timing for each segment",
		Run:   runDialogueBuild,
	}
	assembleCmd := &cobra.Command{
		Use:   "assemble",
		Short: "Group segments by speaker without resolving voices",
		Run:   runDialogueAssemble,
	}
	elevenCmd := &cobra.Command{
		Use:   "elevenlabs",
		Short: "Build a dialogue and format it as an ElevenLabs script",
		Run:   runDialogueElevenLabs,
	}

	for _, c := range []*cobra.Command{buildCmd, assembleCmd, elevenCmd} {
		c.Flags().String("file", "-", "Segments file (JSON array or {segments, character_bible}); - for stdin")
		c.Flags().String("bible", "", "Character bible file (JSON or YAML)")
		c.Flags().String("narrator", "", "Narrator voice id (default: configured narrator voice)")
		dialogueCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{buildCmd, elevenCmd} {
		c.Flags().Bool("record", false, "Record the run in the journal")
		c.Flags().String("label", "", "Journal label")
	}

	RootCmd.AddCommand(dialogueCmd)
}

type dialogueInput struct {
	segments []model.SpeechSegment
	bible    model.CharacterBible
	narrator string
}

func loadDialogueInput(cmd *cobra.Command) dialogueInput {
	file, _ := cmd.Flags().GetString("file")
	biblePath, _ := cmd.Flags().GetString("bible")
	narrator, _ := cmd.Flags().GetString("narrator")

	data, err := readInput(cmd, file)
	if err != nil {
		exitErr("read segments", err)
	}
	doc, err := parseSegments(data)
	if err != nil {
		exitErr("parse segments", err)
	}

	in := dialogueInput{
		segments: dialogue.NormalizeAll(doc.Segments),
		bible:    doc.CharacterBible,
		narrator: doc.NarratorVoice,
	}
	if biblePath != "" {
		if in.bible, err = loadBible(cmd, biblePath); err != nil {
			exitErr("load bible", err)
		}
	}
	if narrator != "" {
		in.narrator = narrator
	}
	if in.narrator == "" {
		in.narrator = cfg.NarratorVoice
	}
	return in
}

func parseSegments(data []byte) (segmentsDoc, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return segmentsDoc{}, err
		}
		return segmentsDoc{Segments: raws}, nil
	}
	var doc segmentsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return segmentsDoc{}, err
	}
	return doc, nil
}

func loadBible(cmd *cobra.Command, path string) (model.CharacterBible, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return model.CharacterBible{}, err
	}
	var bible model.CharacterBible
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &bible)
	default:
		err = json.Unmarshal(data, &bible)
	}
	if err != nil {
		return model.CharacterBible{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return bible, nil
}

func buildFromFlags(cmd *cobra.Command) (dialogueInput, model.Dialogue) {
	in := loadDialogueInput(cmd)
	asm, err := cfg.Assembler()
	if err != nil {
		exitErr("configure assembler", err)
	}
	d := asm.BuildDialogue(in.segments, in.bible, in.narrator)

	if record, _ := cmd.Flags().GetBool("record"); record {
		label, _ := cmd.Flags().GetString("label")
		segs, _ := json.Marshal(in.segments)
		turns, _ := json.Marshal(d.Turns)
		recordEntries(cmd.Context(), store.RecordParams{
			Kind:   model.KindDialogue,
			Label:  label,
			Input:  string(segs),
			Output: string(turns),
			Stats:  d.Statistics,
		})
	}
	return in, d
}

func runDialogueBuild(cmd *cobra.Command, args []string) {
	_, d := buildFromFlags(cmd)
	output(cmd, d, func() string {
		var b strings.Builder
		for _, t := range d.Turns {
			fmt.Fprintf(&b, "%7.2f %7.2f  %-12s [%s] %s\n", t.StartTime, t.EndTime, t.Speaker, t.VoiceID, t.Text)
		}
		fmt.Fprintf(&b, "%d turns, %d speakers, %.2fs", d.Statistics.TurnCount, d.Statistics.SpeakerCount, d.EstimatedDuration)
		return b.String()
	})
}

func runDialogueAssemble(cmd *cobra.Command, args []string) {
	in := loadDialogueInput(cmd)
	a := dialogue.AssembleFromSegments(in.segments, in.bible)
	output(cmd, a, func() string {
		var b strings.Builder
		for _, s := range a.Speakers {
			fmt.Fprintf(&b, "%-16s %3d turns  %s\n", s.Name, s.TurnCount, s.CharacterID)
		}
		fmt.Fprintf(&b, "%d segments, %d words", len(a.Segments), a.WordCount)
		return b.String()
	})
}

func runDialogueElevenLabs(cmd *cobra.Command, args []string) {
	_, d := buildFromFlags(cmd)
	p := dialogue.FormatForElevenLabs(d)
	output(cmd, p, func() string { return p.Script })
}
