package tokens

import (
	"strings"
	"testing"

	"github.com/rcliao/scene-adapter/internal/model"
)

var kinds = []model.TokenizerKind{model.TokenizerClip, model.TokenizerWordEstimate}

func TestEstimate_EmptyIsZero(t *testing.T) {
	for _, k := range kinds {
		for _, text := range []string{"", "   ", "\n\t "} {
			if got := Estimate(text, k); got != 0 {
				t.Errorf("%s: expected 0 for %q, got %d", k, text, got)
			}
		}
	}
}

func TestEstimate_GrowsWithText(t *testing.T) {
	short := "A cat"
	long := "A beautiful orange tabby cat sitting on a velvet cushion in an ornate Victorian parlor"
	for _, k := range kinds {
		if Estimate(long, k) <= Estimate(short, k) {
			t.Errorf("%s: expected longer text to estimate higher", k)
		}
	}
}

func TestEstimate_MonotonicOverPrefixes(t *testing.T) {
	text := "A young woman with red hair standing in a forest, magical lighting, 8K resolution, photorealistic, ultra detailed, masterpiece quality"
	for _, k := range kinds {
		prev := 0
		for i := 0; i <= len(text); i++ {
			got := Estimate(text[:i], k)
			if got < prev {
				t.Fatalf("%s: estimate decreased at prefix %d: %d < %d", k, i, got, prev)
			}
			prev = got
		}
	}
}

func TestClip_PunctuationCountsDistinctly(t *testing.T) {
	plain := Clip("hello there")
	punct := Clip("hello, there!")
	if punct != plain+2 {
		t.Errorf("expected two extra tokens for punctuation, got %d vs %d", punct, plain)
	}
}

func TestClip_DenserThanWordsForLongWords(t *testing.T) {
	text := "photorealistic hyperdetailed cinematography"
	if Clip(text) <= len(strings.Fields(text))+specialTokens {
		t.Errorf("expected long words to split into sub-words, got %d", Clip(text))
	}
}

func TestWordEstimate(t *testing.T) {
	// 10 words * 1.3 = 13, plus start/end markers
	text := strings.TrimSpace(strings.Repeat("word ", 10))
	if got := WordEstimate(text); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	text := `Hello! How are you? "Fine," she said.`
	for _, k := range kinds {
		first := Estimate(text, k)
		for i := 0; i < 5; i++ {
			if got := Estimate(text, k); got != first {
				t.Fatalf("%s: non-deterministic estimate %d != %d", k, got, first)
			}
		}
		if first <= 0 {
			t.Errorf("%s: expected positive estimate", k)
		}
	}
}
