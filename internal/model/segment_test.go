package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	neg, zero := -1.0, 0.0

	tests := []struct {
		name string
		seg  SpeechSegment
		want []string
	}{
		{"valid dialogue", SpeechSegment{ID: "a", Type: TypeDialogue, Speaker: "Alice", Text: "Hi"}, nil},
		{"valid narrator without speaker", SpeechSegment{ID: "a", Type: TypeNarrator, Text: "Dusk."}, nil},
		{"empty text", SpeechSegment{ID: "a", Type: TypeNarrator, Text: "  "}, []string{"text cannot be empty"}},
		{"long text", SpeechSegment{ID: "a", Type: TypeNarrator, Text: strings.Repeat("x", MaxTextLength+1)}, []string{"maximum length"}},
		{"bad type", SpeechSegment{ID: "a", Type: "song", Text: "La"}, []string{"invalid speech type"}},
		{"internal needs speaker", SpeechSegment{ID: "a", Type: TypeInternal, Text: "Hmm"}, []string{"internal segments must have a speaker"}},
		{"long speaker", SpeechSegment{ID: "a", Type: TypeDialogue, Speaker: strings.Repeat("b", MaxSpeakerLength+1), Text: "Hi"}, []string{"too long"}},
		{"missing id", SpeechSegment{Type: TypeNarrator, Text: "Dusk."}, []string{"must have an id"}},
		{"timing", SpeechSegment{ID: "a", Type: TypeNarrator, Text: "Dusk.", StartTime: &neg, Duration: &zero}, []string{"negative", "positive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.seg.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d problems, got %v", len(tt.want), got)
			}
			for i, w := range tt.want {
				if !strings.Contains(got[i], w) {
					t.Errorf("problem %d = %q, want it to mention %q", i, got[i], w)
				}
			}
		})
	}
}

func TestNeedsLipSync(t *testing.T) {
	for typ, want := range map[SegmentType]bool{
		TypeNarrator:  false,
		TypeInternal:  false,
		TypeDialogue:  true,
		TypeMonologue: true,
	} {
		if got := typ.NeedsLipSync(); got != want {
			t.Errorf("%s: NeedsLipSync = %v, want %v", typ, got, want)
		}
	}
	if TypeInternal.Label() != "Internal" || SegmentType("x").Label() != "Unknown" {
		t.Error("unexpected labels")
	}
}

func TestVoiceUnmarshalJSON(t *testing.T) {
	var bible CharacterBible
	data := `{"characters":[{"name":"Alice","voice":"v-alice"},{"name":"Bob","voice":{"gender":"male"}}]}`
	if err := json.Unmarshal([]byte(data), &bible); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bible.Characters[0].Voice.ID != "v-alice" {
		t.Errorf("string form: got %+v", bible.Characters[0].Voice)
	}
	if bible.Characters[1].Voice.Gender != "male" || bible.Characters[1].Voice.ID != "" {
		t.Errorf("object form: got %+v", bible.Characters[1].Voice)
	}

	var v Voice
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Error("expected error for numeric voice")
	}
}
