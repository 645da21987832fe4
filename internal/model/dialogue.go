package model

// DialogueTurn is one timed, voice-resolved unit of the assembled timeline.
// Times are seconds from the timeline origin.
type DialogueTurn struct {
	ID           string      `json:"id"`
	Order        int         `json:"order"`
	Speaker      string      `json:"speaker"`
	Text         string      `json:"text"`
	VoiceID      string      `json:"voiceId"`
	Emotion      string      `json:"emotion,omitempty"`
	StartTime    float64     `json:"startTime"`
	Duration     float64     `json:"duration"`
	EndTime      float64     `json:"endTime"`
	Type         SegmentType `json:"type"`
	NeedsLipSync bool        `json:"needsLipSync"`
}

// SpeakerVoice pairs a speaker name with its resolved voice.
type SpeakerVoice struct {
	Name    string `json:"name"`
	VoiceID string `json:"voiceId"`
}

// DialogueStats summarizes an assembled dialogue.
type DialogueStats struct {
	TurnCount      int `json:"turnCount"`
	SpeakerCount   int `json:"speakerCount"`
	LipSyncTurns   int `json:"lipSyncTurns"`
	VoiceoverTurns int `json:"voiceoverTurns"`
}

// Dialogue is the result of a dialogue build. Speakers is kept in first-seen
// order so provider payloads are deterministic.
type Dialogue struct {
	Turns             []DialogueTurn `json:"turns"`
	Speakers          []SpeakerVoice `json:"speakers"`
	EstimatedDuration float64        `json:"estimatedDuration"`
	Statistics        DialogueStats  `json:"statistics"`
}

// VoiceFor returns the resolved voice of a speaker in the dialogue.
func (d Dialogue) VoiceFor(name string) (string, bool) {
	for _, s := range d.Speakers {
		if s.Name == name {
			return s.VoiceID, true
		}
	}
	return "", false
}
