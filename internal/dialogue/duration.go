package dialogue

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/rcliao/scene-adapter/internal/model"
)

const (
	// DefaultWordsPerMinute is the assumed speaking rate.
	DefaultWordsPerMinute = 150.0
	// TransitionPause is the silence inserted between adjacent turns, in seconds.
	TransitionPause = 0.3
)

// ErrInvalidArgument is returned for caller errors such as a non-positive
// speaking rate.
var ErrInvalidArgument = errors.New("invalid argument")

// EstimateDuration returns the spoken length of segments in seconds: total
// words at wpm plus one transition pause between each adjacent pair. The
// result is rounded to hundredths.
func EstimateDuration(segments []model.SpeechSegment, wpm float64) (float64, error) {
	return estimateDuration(segments, wpm, TransitionPause)
}

// CheckRate returns ErrInvalidArgument unless wpm is a finite positive rate.
func CheckRate(wpm float64) error {
	if wpm <= 0 || math.IsNaN(wpm) || math.IsInf(wpm, 0) {
		return fmt.Errorf("%w: words per minute must be positive and finite, got %v", ErrInvalidArgument, wpm)
	}
	return nil
}

func estimateDuration(segments []model.SpeechSegment, wpm, pause float64) (float64, error) {
	if err := CheckRate(wpm); err != nil {
		return 0, err
	}
	words := 0
	for _, s := range segments {
		words += CountWords(s.Text)
	}
	secs := float64(words) / wpm * 60
	if len(segments) > 1 {
		secs += float64(len(segments)-1) * pause
	}
	return round2(secs), nil
}

// CountWords counts runs of letters, apostrophes and hyphens. Digits and
// other symbols separate words without counting as one.
func CountWords(text string) int {
	n := 0
	in := false
	for _, r := range text {
		if unicode.IsLetter(r) || r == '\'' || r == '-' {
			if !in {
				n++
				in = true
			}
			continue
		}
		in = false
	}
	return n
}

// WordCount counts the words of all segments with non-empty text.
func WordCount(segments []model.SpeechSegment) int {
	n := 0
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			n += CountWords(s.Text)
		}
	}
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
