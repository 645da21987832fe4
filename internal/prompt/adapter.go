// Package prompt adapts free-text visual prompts to the token budget of a
// target image/video model.
//
// Compression is clause based: the prompt is split on top-level commas, each
// clause is classified into a priority category, and the lowest priority
// clauses are dropped (later ones first) until the prompt fits. Clause order is
// never changed and the highest priority clause is never dropped.
package prompt

import (
	"github.com/rcliao/scene-adapter/internal/clause"
	"github.com/rcliao/scene-adapter/internal/logger"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/tokens"
)

// Context carries generation hints that change compression priorities.
type Context struct {
	ShotType string `json:"shot_type,omitempty" yaml:"shot_type,omitempty"`
}

// Stats describes one adaptation.
type Stats struct {
	OriginalTokens int                `json:"originalTokens"`
	AdaptedTokens  int                `json:"adaptedTokens"`
	WasCompressed  bool               `json:"wasCompressed"`
	ModelConfig    model.ModelProfile `json:"modelConfig"`
	TokenizerMode  string             `json:"tokenizerMode"`
	MaxTokens      int                `json:"maxTokens"`
	UnderLimit     bool               `json:"underLimit"`
}

// Adapter adapts prompts against an immutable profile table. It holds no
// mutable state and is safe for concurrent use.
type Adapter struct {
	profiles   *Profiles
	classifier clause.Classifier
}

// NewAdapter creates an Adapter. A nil classifier selects clause.DefaultChain.
func NewAdapter(profiles *Profiles, classifier clause.Classifier) *Adapter {
	if classifier == nil {
		classifier = clause.DefaultChain()
	}
	return &Adapter{profiles: profiles, classifier: classifier}
}

// Default returns an Adapter over the built-in profiles.
func Default() *Adapter {
	profiles, _ := NewProfiles(nil, "")
	return NewAdapter(profiles, nil)
}

// Profiles returns the adapter's profile table.
func (a *Adapter) Profiles() *Profiles { return a.profiles }

// GetModelConfig returns the profile for modelID, or the default profile.
func (a *Adapter) GetModelConfig(modelID string) model.ModelProfile {
	prof, _ := a.profiles.Lookup(modelID)
	return prof
}

// RequiresCompression reports whether prompts for modelID may be compressed.
func (a *Adapter) RequiresCompression(modelID string) bool {
	return a.GetModelConfig(modelID).Truncation == model.TruncationIntelligent
}

// EstimateTokens estimates text with the tokenizer of modelID's profile.
func (a *Adapter) EstimateTokens(text, modelID string) int {
	return tokens.Estimate(text, a.GetModelConfig(modelID).Tokenizer)
}

// AdaptPrompt returns text fitted to modelID's budget. Models without
// truncation get text back unchanged whatever its length.
func (a *Adapter) AdaptPrompt(text, modelID string, ctx Context) string {
	prof := a.GetModelConfig(modelID)
	if prof.Truncation != model.TruncationIntelligent {
		logger.Debug("prompt: model %s does not truncate, passing through", modelID)
		return text
	}

	original := tokens.Estimate(text, prof.Tokenizer)
	if original <= prof.MaxTokens {
		return text
	}

	adapted := a.compress(text, prof.MaxTokens, prof.Tokenizer, ctx)
	logger.Debug("prompt: adapted for %s originalTokens=%d adaptedTokens=%d wasCompressed=%t",
		modelID, original, tokens.Estimate(adapted, prof.Tokenizer), adapted != text)
	return adapted
}

// CompressForClip fits text into budget CLIP-style tokens.
func (a *Adapter) CompressForClip(text string, budget int, ctx Context) string {
	return a.compress(text, budget, model.TokenizerClip, ctx)
}

func (a *Adapter) compress(text string, budget int, kind model.TokenizerKind, ctx Context) string {
	if tokens.Estimate(text, kind) <= budget {
		return text
	}

	clauses := clause.Tag(clause.Split(text), a.classifier)
	if len(clauses) == 0 {
		return text
	}

	rank := RankOf(ctx.ShotType)
	keep := protectedClause(clauses, rank)

	alive := make([]clause.Clause, len(clauses))
	copy(alive, clauses)
	for {
		current := clause.Join(alive)
		if tokens.Estimate(current, kind) <= budget {
			return current
		}
		victim := dropCandidate(alive, keep, rank)
		if victim < 0 {
			return current
		}
		alive = append(alive[:victim], alive[victim+1:]...)
	}
}

// protectedClause returns the position of the best ranked clause, earliest
// first on ties.
func protectedClause(clauses []clause.Clause, rank map[model.Category]int) int {
	best := clauses[0]
	for _, c := range clauses[1:] {
		if rank[c.Category] < rank[best.Category] {
			best = c
		}
	}
	return best.Position
}

// dropCandidate returns the slice index of the next clause to drop, or -1
// when only the protected clause is left.
func dropCandidate(alive []clause.Clause, keep int, rank map[model.Category]int) int {
	victim := -1
	for i, c := range alive {
		if c.Position == keep {
			continue
		}
		if victim < 0 {
			victim = i
			continue
		}
		v := alive[victim]
		if rank[c.Category] > rank[v.Category] ||
			(rank[c.Category] == rank[v.Category] && c.Position > v.Position) {
			victim = i
		}
	}
	return victim
}

// GetAdaptationStats reports token counts for an original/adapted pair.
func (a *Adapter) GetAdaptationStats(original, adapted, modelID string) Stats {
	prof := a.GetModelConfig(modelID)
	adaptedTokens := tokens.Estimate(adapted, prof.Tokenizer)
	return Stats{
		OriginalTokens: tokens.Estimate(original, prof.Tokenizer),
		AdaptedTokens:  adaptedTokens,
		WasCompressed:  original != adapted,
		ModelConfig:    prof,
		TokenizerMode:  string(prof.Tokenizer),
		MaxTokens:      prof.MaxTokens,
		UnderLimit:     adaptedTokens <= prof.MaxTokens,
	}
}
