package dialogue

import (
	"strings"

	"github.com/rcliao/scene-adapter/internal/model"
)

// ElevenLabsSpeaker is one entry of the payload's speaker list.
type ElevenLabsSpeaker struct {
	Name    string `json:"name"`
	VoiceID string `json:"voice_id"`
}

// ElevenLabsChapter marks where a turn starts in the synthesized audio.
type ElevenLabsChapter struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	VoiceID   string  `json:"voice_id"`
	StartTime float64 `json:"start_time"`
}

// ElevenLabsPayload is a multi-speaker synthesis request body.
type ElevenLabsPayload struct {
	Speakers []ElevenLabsSpeaker `json:"speakers"`
	Script   string              `json:"script"`
	Chapters []ElevenLabsChapter `json:"chapters"`
}

// FormatForElevenLabs converts a dialogue into a tagged script. Each turn
// becomes <speaker name="NAME">text</speaker> on its own line; speaker tags
// are upper-cased and text is passed through as-is.
func FormatForElevenLabs(d model.Dialogue) ElevenLabsPayload {
	p := ElevenLabsPayload{
		Speakers: make([]ElevenLabsSpeaker, 0, len(d.Speakers)),
		Chapters: make([]ElevenLabsChapter, 0, len(d.Turns)),
	}
	for _, s := range d.Speakers {
		p.Speakers = append(p.Speakers, ElevenLabsSpeaker{Name: s.Name, VoiceID: s.VoiceID})
	}

	var b strings.Builder
	for _, t := range d.Turns {
		b.WriteString(`<speaker name="`)
		b.WriteString(strings.ToUpper(t.Speaker))
		b.WriteString(`">`)
		b.WriteString(t.Text)
		b.WriteString("</speaker>\n")

		p.Chapters = append(p.Chapters, ElevenLabsChapter{
			Speaker:   t.Speaker,
			Text:      t.Text,
			VoiceID:   t.VoiceID,
			StartTime: t.StartTime,
		})
	}
	p.Script = strings.TrimSpace(b.String())
	return p
}
