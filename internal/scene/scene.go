// Package scene prepares a batch of scene records for generation: each scene
// gets an adapted visual prompt, an assembled dialogue and a synthesis
// payload.
package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/scene-adapter/internal/dialogue"
	"github.com/rcliao/scene-adapter/internal/logger"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/prompt"
	"github.com/rcliao/scene-adapter/internal/store"
)

// Project is a batch of scenes sharing one model and character bible.
type Project struct {
	Model          string               `json:"model" yaml:"model" jsonschema_description:"Target model id; unknown ids fall back to the default profile"`
	NarratorVoice  string               `json:"narrator_voice,omitempty" yaml:"narrator_voice,omitempty" jsonschema_description:"Voice id for NARRATOR segments"`
	SharedVoices   bool                 `json:"shared_voices,omitempty" yaml:"shared_voices,omitempty" jsonschema_description:"Keep one voice table across all scenes of the batch"`
	CharacterBible model.CharacterBible `json:"character_bible" yaml:"character_bible" jsonschema_description:"Characters with optional voice id or gender"`
	Scenes         []Scene              `json:"scenes" yaml:"scenes" jsonschema_description:"Scenes in playback order"`
}

// Scene is one caller-supplied scene record. Segments are loosely typed and
// normalized on the way in.
type Scene struct {
	ID                string           `json:"id,omitempty" yaml:"id,omitempty" jsonschema_description:"Scene id; defaults to scene-N"`
	Narration         string           `json:"narration,omitempty" yaml:"narration,omitempty" jsonschema_description:"Narration text, spoken by NARRATOR when there are no segments"`
	VisualDescription string           `json:"visual_description,omitempty" yaml:"visual_description,omitempty" jsonschema_description:"Visual prompt source; narration is used when empty"`
	ShotType          string           `json:"shot_type,omitempty" yaml:"shot_type,omitempty" jsonschema_description:"Shot type hint such as close-up, wide or establishing"`
	Segments          []map[string]any `json:"segments,omitempty" yaml:"segments,omitempty" jsonschema_description:"Speech segments with speaker or name, text, type and emotion"`
}

// Result is the prepared batch.
type Result struct {
	Model  string        `json:"model"`
	Scenes []SceneResult `json:"scenes"`
	Totals Totals        `json:"totals"`
}

// SceneResult is one prepared scene.
type SceneResult struct {
	ID          string                     `json:"id"`
	Source      string                     `json:"source"`
	Prompt      string                     `json:"prompt"`
	PromptStats prompt.Stats               `json:"promptStats"`
	Dialogue    model.Dialogue             `json:"dialogue"`
	ElevenLabs  dialogue.ElevenLabsPayload `json:"elevenlabs"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

// Totals aggregates a batch.
type Totals struct {
	Scenes            int     `json:"scenes"`
	Turns             int     `json:"turns"`
	EstimatedDuration float64 `json:"estimatedDuration"`
	CompressedPrompts int     `json:"compressedPrompts"`
	Warnings          int     `json:"warnings"`
}

// Preparer runs both adaptation components over a project.
type Preparer struct {
	adapter   *prompt.Adapter
	assembler *dialogue.Assembler
}

// NewPreparer creates a Preparer. Nil arguments select the defaults.
func NewPreparer(adapter *prompt.Adapter, assembler *dialogue.Assembler) *Preparer {
	if adapter == nil {
		adapter = prompt.Default()
	}
	if assembler == nil {
		assembler = dialogue.Default()
	}
	return &Preparer{adapter: adapter, assembler: assembler}
}

// Prepare processes every scene of p. Voice registries live only for this
// call; with SharedVoices one registry spans all scenes.
func (pr *Preparer) Prepare(p Project) Result {
	modelID := p.Model
	if modelID == "" {
		modelID = pr.adapter.Profiles().DefaultID()
	}
	res := Result{Model: modelID, Scenes: make([]SceneResult, 0, len(p.Scenes))}

	var shared *dialogue.Registry
	if p.SharedVoices {
		shared = pr.assembler.NewRegistry(p.CharacterBible, p.NarratorVoice)
	}

	var total float64
	for i, sc := range p.Scenes {
		reg := shared
		if reg == nil {
			reg = pr.assembler.NewRegistry(p.CharacterBible, p.NarratorVoice)
		}
		sr := pr.prepareScene(sc, i, modelID, reg)

		res.Totals.Turns += sr.Dialogue.Statistics.TurnCount
		res.Totals.Warnings += len(sr.Warnings)
		if sr.PromptStats.WasCompressed {
			res.Totals.CompressedPrompts++
		}
		total += sr.Dialogue.EstimatedDuration
		res.Scenes = append(res.Scenes, sr)
	}
	res.Totals.Scenes = len(res.Scenes)
	res.Totals.EstimatedDuration = math.Round(total*100) / 100

	logger.Info("scene: prepared %d scenes for %s (%d compressed prompts, %.2fs)",
		res.Totals.Scenes, modelID, res.Totals.CompressedPrompts, res.Totals.EstimatedDuration)
	return res
}

func (pr *Preparer) prepareScene(sc Scene, index int, modelID string, reg *dialogue.Registry) SceneResult {
	sr := SceneResult{ID: sc.ID}
	if sr.ID == "" {
		sr.ID = fmt.Sprintf("scene-%d", index+1)
	}

	source := strings.TrimSpace(sc.VisualDescription)
	if source == "" {
		source = strings.TrimSpace(sc.Narration)
	}
	sr.Source = source
	sr.Prompt = pr.adapter.AdaptPrompt(source, modelID, prompt.Context{ShotType: sc.ShotType})
	sr.PromptStats = pr.adapter.GetAdaptationStats(source, sr.Prompt, modelID)
	if !sr.PromptStats.UnderLimit {
		sr.Warnings = append(sr.Warnings, fmt.Sprintf("prompt is over the %d token budget after compression", sr.PromptStats.MaxTokens))
	}

	segs := dialogue.NormalizeAll(sc.Segments)
	if len(segs) == 0 && strings.TrimSpace(sc.Narration) != "" {
		segs = []model.SpeechSegment{dialogue.Normalize(model.NewNarratorSegment(sc.Narration), 0)}
	}
	if len(segs) > model.MaxSegmentsPerScene {
		sr.Warnings = append(sr.Warnings, fmt.Sprintf("scene has %d segments (max %d)", len(segs), model.MaxSegmentsPerScene))
	}
	for i, s := range segs {
		for _, msg := range s.Validate() {
			sr.Warnings = append(sr.Warnings, fmt.Sprintf("segment %d: %s", i, msg))
		}
	}

	sr.Dialogue = pr.assembler.Build(segs, reg)
	sr.ElevenLabs = dialogue.FormatForElevenLabs(sr.Dialogue)
	return sr
}

// JournalEntries returns one prompt and one dialogue entry per scene, all
// grouped under batch.
func (r Result) JournalEntries(batch string) []store.RecordParams {
	out := make([]store.RecordParams, 0, 2*len(r.Scenes))
	for _, sr := range r.Scenes {
		turns, _ := json.Marshal(sr.Dialogue.Turns)
		out = append(out,
			store.RecordParams{
				Kind:       model.KindPrompt,
				Model:      r.Model,
				Label:      sr.ID,
				Batch:      batch,
				Input:      sr.Source,
				Output:     sr.Prompt,
				Stats:      sr.PromptStats,
				Compressed: sr.PromptStats.WasCompressed,
			},
			store.RecordParams{
				Kind:   model.KindDialogue,
				Model:  r.Model,
				Label:  sr.ID,
				Batch:  batch,
				Input:  sr.ElevenLabs.Script,
				Output: string(turns),
				Stats:  sr.Dialogue.Statistics,
			},
		)
	}
	return out
}

// Parse decodes a project. format is "yaml" or "json".
func Parse(data []byte, format string) (Project, error) {
	var p Project
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Project{}, fmt.Errorf("parse yaml project: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &p); err != nil {
			return Project{}, fmt.Errorf("parse json project: %w", err)
		}
	}
	return p, nil
}

// Load reads a project file, choosing the decoder by extension.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}
	return Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}
