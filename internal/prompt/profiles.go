package prompt

import (
	"fmt"
	"sort"

	"github.com/rcliao/scene-adapter/internal/model"
)

// DefaultModelID is the permissive profile unknown model ids resolve to.
const DefaultModelID = "nanobanana"

// DefaultProfiles returns the built-in profile table.
func DefaultProfiles() map[string]model.ModelProfile {
	return map[string]model.ModelProfile{
		"hidream": {
			Tokenizer:  model.TokenizerClip,
			MaxTokens:  77,
			Truncation: model.TruncationIntelligent,
		},
		"nanobanana": {
			Tokenizer:  model.TokenizerWordEstimate,
			MaxTokens:  4096,
			Truncation: model.TruncationNone,
		},
		"nanobanana-pro": {
			Tokenizer:  model.TokenizerWordEstimate,
			MaxTokens:  8192,
			Truncation: model.TruncationNone,
		},
	}
}

// Profiles is an immutable model profile table.
type Profiles struct {
	byID      map[string]model.ModelProfile
	defaultID string
}

// NewProfiles copies table, layering it over the built-in profiles. An empty
// defaultID selects DefaultModelID. The default profile is the fallback for
// unknown ids, so it must exist and must not truncate.
func NewProfiles(table map[string]model.ModelProfile, defaultID string) (*Profiles, error) {
	byID := DefaultProfiles()
	for id, p := range table {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", id, err)
		}
		byID[id] = p
	}
	if defaultID == "" {
		defaultID = DefaultModelID
	}
	fallback, ok := byID[defaultID]
	if !ok {
		return nil, fmt.Errorf("default profile %q not in table", defaultID)
	}
	if fallback.Truncation != model.TruncationNone {
		return nil, fmt.Errorf("default profile %q must not truncate, has %s", defaultID, fallback.Truncation)
	}
	return &Profiles{byID: byID, defaultID: defaultID}, nil
}

// Lookup returns the profile for id and whether it was an exact match. Unknown
// ids get the default profile.
func (p *Profiles) Lookup(id string) (model.ModelProfile, bool) {
	if prof, ok := p.byID[id]; ok {
		return prof, true
	}
	return p.byID[p.defaultID], false
}

// DefaultID returns the id unknown models resolve to.
func (p *Profiles) DefaultID() string { return p.defaultID }

// IDs returns all model ids, sorted.
func (p *Profiles) IDs() []string {
	ids := make([]string, 0, len(p.byID))
	for id := range p.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
