package model

import "time"

// EntryKind names what a journal entry recorded.
type EntryKind string

const (
	KindPrompt   EntryKind = "prompt"
	KindDialogue EntryKind = "dialogue"
)

// ValidKinds are the allowed journal entry kinds.
var ValidKinds = map[EntryKind]bool{
	KindPrompt:   true,
	KindDialogue: true,
}

// Entry is one recorded adaptation run. Input and Output hold the raw text
// or JSON that went in and came out; Stats is the JSON of the run's stats.
type Entry struct {
	ID         string     `json:"id"`
	Kind       EntryKind  `json:"kind"`
	Model      string     `json:"model,omitempty"`
	Label      string     `json:"label,omitempty"`
	Batch      string     `json:"batch,omitempty"`
	Input      string     `json:"input"`
	Output     string     `json:"output"`
	Stats      string     `json:"stats,omitempty"`
	Compressed bool       `json:"compressed,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
