package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Narrator is the speaker name used when a segment has none.
const Narrator = "NARRATOR"

const (
	// MaxTextLength is the longest segment text accepted by Validate.
	MaxTextLength = 2000
	// MaxSpeakerLength is the longest speaker name accepted by Validate.
	MaxSpeakerLength = 100
	// MaxSegmentsPerScene bounds the number of segments in one scene.
	MaxSegmentsPerScene = 50
)

// SegmentType is the kind of speech a segment carries.
type SegmentType string

const (
	TypeNarrator  SegmentType = "narrator"
	TypeDialogue  SegmentType = "dialogue"
	TypeInternal  SegmentType = "internal"
	TypeMonologue SegmentType = "monologue"
)

// ValidSegmentTypes are the allowed segment types.
var ValidSegmentTypes = map[SegmentType]bool{
	TypeNarrator:  true,
	TypeDialogue:  true,
	TypeInternal:  true,
	TypeMonologue: true,
}

// NeedsLipSync reports whether rendering this type moves the speaker's mouth.
// Narrator and internal segments are voiceover only.
func (t SegmentType) NeedsLipSync() bool {
	return t == TypeDialogue || t == TypeMonologue
}

// Label returns the display name of the type.
func (t SegmentType) Label() string {
	switch t {
	case TypeNarrator:
		return "Narrator"
	case TypeDialogue:
		return "Dialogue"
	case TypeInternal:
		return "Internal"
	case TypeMonologue:
		return "Monologue"
	default:
		return "Unknown"
	}
}

// SpeechSegment is one piece of spoken text within a scene.
type SpeechSegment struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Speaker     string      `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text        string      `json:"text" yaml:"text"`
	Type        SegmentType `json:"type,omitempty" yaml:"type,omitempty"`
	Emotion     string      `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	Order       *int        `json:"order,omitempty" yaml:"order,omitempty"`
	CharacterID string      `json:"characterId,omitempty" yaml:"character_id,omitempty"`
	StartTime   *float64    `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	Duration    *float64    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// NewNarratorSegment creates a narrator segment.
func NewNarratorSegment(text string) SpeechSegment {
	return SpeechSegment{Type: TypeNarrator, Speaker: Narrator, Text: text}
}

// NewDialogueSegment creates a lip-synced dialogue segment.
func NewDialogueSegment(speaker, text string) SpeechSegment {
	return SpeechSegment{Type: TypeDialogue, Speaker: speaker, Text: text}
}

// NewInternalSegment creates an internal-thought voiceover segment.
func NewInternalSegment(speaker, text string) SpeechSegment {
	return SpeechSegment{Type: TypeInternal, Speaker: speaker, Text: text}
}

// NewMonologueSegment creates a lip-synced monologue segment.
func NewMonologueSegment(speaker, text string) SpeechSegment {
	return SpeechSegment{Type: TypeMonologue, Speaker: speaker, Text: text}
}

// HasSpeaker reports whether the segment names a speaker other than the narrator.
func (s SpeechSegment) HasSpeaker() bool {
	sp := strings.TrimSpace(s.Speaker)
	return sp != "" && !strings.EqualFold(sp, Narrator)
}

// Validate returns human readable problems with the segment, or nil.
func (s SpeechSegment) Validate() []string {
	var errs []string

	if strings.TrimSpace(s.Text) == "" {
		errs = append(errs, "segment text cannot be empty")
	} else if len(s.Text) > MaxTextLength {
		errs = append(errs, fmt.Sprintf("segment text exceeds maximum length (%d characters), consider splitting it", MaxTextLength))
	}

	if !ValidSegmentTypes[s.Type] {
		errs = append(errs, fmt.Sprintf("invalid speech type %q (valid: narrator, dialogue, internal, monologue)", s.Type))
	}

	switch s.Type {
	case TypeDialogue, TypeMonologue, TypeInternal:
		if strings.TrimSpace(s.Speaker) == "" {
			errs = append(errs, fmt.Sprintf("%s segments must have a speaker", s.Type))
		} else if len(s.Speaker) > MaxSpeakerLength {
			errs = append(errs, fmt.Sprintf("speaker name is too long (max %d characters)", MaxSpeakerLength))
		}
	}

	if s.ID == "" {
		errs = append(errs, "segment must have an id")
	}
	if s.StartTime != nil && *s.StartTime < 0 {
		errs = append(errs, "start time cannot be negative")
	}
	if s.Duration != nil && *s.Duration <= 0 {
		errs = append(errs, "duration must be positive")
	}

	return errs
}

// CharacterBible is the per-project roster of characters.
type CharacterBible struct {
	Characters []CharacterBibleEntry `json:"characters" yaml:"characters"`
}

// CharacterBibleEntry describes one character and, optionally, its voice.
type CharacterBibleEntry struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name" yaml:"name"`
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Voice  Voice  `json:"voice,omitempty" yaml:"voice,omitempty"`
}

// Voice is a character's voice assignment. It decodes from either a bare
// voice id string or an object {"id": ..., "gender": ...}.
type Voice struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// UnmarshalJSON accepts both voice forms.
func (v *Voice) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*v = Voice{ID: id}
		return nil
	}
	type plain Voice
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("voice must be a string or an object: %w", err)
	}
	*v = Voice(p)
	return nil
}

// UnmarshalYAML accepts both voice forms.
func (v *Voice) UnmarshalYAML(unmarshal func(any) error) error {
	var id string
	if err := unmarshal(&id); err == nil {
		*v = Voice{ID: id}
		return nil
	}
	type plain Voice
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*v = Voice(p)
	return nil
}
