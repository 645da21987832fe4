// Package dialogue assembles speech segments into a timed, voice-resolved
// turn sequence and formats it for speech-synthesis providers.
package dialogue

import (
	"fmt"
	"math"
	"strings"

	"github.com/rcliao/scene-adapter/internal/logger"
	"github.com/rcliao/scene-adapter/internal/model"
)

// Options controls timing and voice resolution.
type Options struct {
	WordsPerMinute  float64
	TransitionPause float64
	Resolver        Resolver
}

// DefaultOptions returns 150 wpm, a 0.3s pause and the default resolver.
func DefaultOptions() Options {
	return Options{
		WordsPerMinute:  DefaultWordsPerMinute,
		TransitionPause: TransitionPause,
		Resolver:        DefaultResolver(),
	}
}

// Assembler builds dialogues. It carries only immutable options; every
// build allocates its own Registry.
type Assembler struct {
	opts Options
}

// New creates an Assembler.
func New(opts Options) (*Assembler, error) {
	if err := CheckRate(opts.WordsPerMinute); err != nil {
		return nil, err
	}
	if !(opts.TransitionPause >= 0) || math.IsInf(opts.TransitionPause, 0) {
		return nil, fmt.Errorf("%w: transition pause must be finite and not negative, got %v", ErrInvalidArgument, opts.TransitionPause)
	}
	if len(opts.Resolver.Pool) == 0 {
		opts.Resolver.Pool = DefaultVoicePool
	}
	return &Assembler{opts: opts}, nil
}

var defaultAssembler = &Assembler{opts: DefaultOptions()}

// Default returns an Assembler with DefaultOptions.
func Default() *Assembler { return defaultAssembler }

// Options returns the assembler's options.
func (a *Assembler) Options() Options { return a.opts }

// NewRegistry creates a registry using the assembler's resolver.
func (a *Assembler) NewRegistry(bible model.CharacterBible, narratorVoice string) *Registry {
	return NewRegistry(a.opts.Resolver, bible, narratorVoice)
}

// BuildDialogue builds a dialogue with the default assembler.
func BuildDialogue(segments []model.SpeechSegment, bible model.CharacterBible, narratorVoice string) model.Dialogue {
	return defaultAssembler.BuildDialogue(segments, bible, narratorVoice)
}

// BuildDialogue builds a dialogue with a fresh registry.
func (a *Assembler) BuildDialogue(segments []model.SpeechSegment, bible model.CharacterBible, narratorVoice string) model.Dialogue {
	return a.Build(segments, a.NewRegistry(bible, narratorVoice))
}

// Build builds a dialogue resolving voices through reg. Sharing reg between
// builds keeps assignments consistent across them.
func (a *Assembler) Build(segments []model.SpeechSegment, reg *Registry) model.Dialogue {
	d := model.Dialogue{
		Turns:    []model.DialogueTurn{},
		Speakers: []model.SpeakerVoice{},
	}
	speakerIdx := make(map[string]int)
	current := 0.0

	for i, raw := range segments {
		seg := Normalize(raw, i)
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			logger.Trace("dialogue: skipping empty segment %d", i)
			continue
		}

		voice := reg.Resolve(seg.Speaker)
		// New has already checked the rate with CheckRate.
		dur, _ := estimateDuration([]model.SpeechSegment{seg}, a.opts.WordsPerMinute, 0)

		turn := model.DialogueTurn{
			ID:           seg.ID,
			Order:        i,
			Speaker:      seg.Speaker,
			Text:         text,
			VoiceID:      voice,
			Emotion:      seg.Emotion,
			StartTime:    current,
			Duration:     dur,
			EndTime:      current + dur,
			Type:         seg.Type,
			NeedsLipSync: seg.Type.NeedsLipSync(),
		}
		d.Turns = append(d.Turns, turn)
		current = turn.EndTime + a.opts.TransitionPause

		if j, ok := speakerIdx[seg.Speaker]; ok {
			d.Speakers[j].VoiceID = voice
		} else {
			speakerIdx[seg.Speaker] = len(d.Speakers)
			d.Speakers = append(d.Speakers, model.SpeakerVoice{Name: seg.Speaker, VoiceID: voice})
		}

		if turn.NeedsLipSync {
			d.Statistics.LipSyncTurns++
		} else {
			d.Statistics.VoiceoverTurns++
		}
	}

	if n := len(d.Turns); n > 0 {
		d.EstimatedDuration = d.Turns[n-1].EndTime
	}
	d.Statistics.TurnCount = len(d.Turns)
	d.Statistics.SpeakerCount = len(d.Speakers)

	logger.Info("dialogue: built %d turns, %d speakers, %.2fs",
		d.Statistics.TurnCount, d.Statistics.SpeakerCount, d.EstimatedDuration)
	return d
}

// SpeakerSummary groups the turns of one speaker.
type SpeakerSummary struct {
	Name        string `json:"name"`
	TurnCount   int    `json:"turnCount"`
	CharacterID string `json:"characterId,omitempty"`
}

// Assembly is the result of AssembleFromSegments.
type Assembly struct {
	Segments  []model.SpeechSegment `json:"segments"`
	Speakers  []SpeakerSummary      `json:"speakers"`
	WordCount int                   `json:"wordCount"`
}

// AssembleFromSegments normalizes segments, drops empty ones and groups the
// rest by speaker without resolving voices. Speakers keep first-seen order
// and are matched case-insensitively; the first spelling seen is reported.
func AssembleFromSegments(segments []model.SpeechSegment, bible model.CharacterBible) Assembly {
	out := Assembly{
		Segments: []model.SpeechSegment{},
		Speakers: []SpeakerSummary{},
	}
	idx := make(map[string]int)

	for i, raw := range segments {
		seg := Normalize(raw, i)
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		out.Segments = append(out.Segments, seg)
		out.WordCount += CountWords(seg.Text)

		key := normalizeName(seg.Speaker)
		if j, ok := idx[key]; ok {
			out.Speakers[j].TurnCount++
			continue
		}
		idx[key] = len(out.Speakers)
		out.Speakers = append(out.Speakers, SpeakerSummary{
			Name:        strings.TrimSpace(seg.Speaker),
			TurnCount:   1,
			CharacterID: characterID(bible, key, seg.CharacterID),
		})
	}
	return out
}

// characterID prefers the bible entry's id, then a positional id for entries
// without one, then the segment's own characterId.
func characterID(bible model.CharacterBible, normalized, fallback string) string {
	for i, c := range bible.Characters {
		if normalizeName(c.Name) != normalized {
			continue
		}
		if c.ID != "" {
			return c.ID
		}
		return fmt.Sprintf("char-%d", i)
	}
	return fallback
}
