// Package model defines the value types shared by the prompt adapter and the
// dialogue assembler.
package model

import "fmt"

// TokenizerKind selects how tokens are estimated for a model.
type TokenizerKind string

const (
	// TokenizerClip approximates CLIP-style sub-word tokenization.
	TokenizerClip TokenizerKind = "clip"
	// TokenizerWordEstimate scales whitespace-delimited word counts.
	TokenizerWordEstimate TokenizerKind = "word-estimate"
)

// TruncationPolicy says whether prompts are compressed for a model.
type TruncationPolicy string

const (
	TruncationNone        TruncationPolicy = "none"
	TruncationIntelligent TruncationPolicy = "intelligent"
)

// ValidTokenizers are the allowed tokenizer kinds.
var ValidTokenizers = map[TokenizerKind]bool{
	TokenizerClip:         true,
	TokenizerWordEstimate: true,
}

// ValidTruncations are the allowed truncation policies.
var ValidTruncations = map[TruncationPolicy]bool{
	TruncationNone:        true,
	TruncationIntelligent: true,
}

// ModelProfile describes the prompt constraints of one generation model.
type ModelProfile struct {
	Tokenizer  TokenizerKind    `json:"tokenizer" yaml:"tokenizer"`
	MaxTokens  int              `json:"maxTokens" yaml:"max_tokens"`
	Truncation TruncationPolicy `json:"truncation" yaml:"truncation"`
}

// Validate reports the first problem with a profile.
func (p ModelProfile) Validate() error {
	if !ValidTokenizers[p.Tokenizer] {
		return fmt.Errorf("unknown tokenizer %q (valid: clip, word-estimate)", p.Tokenizer)
	}
	if !ValidTruncations[p.Truncation] {
		return fmt.Errorf("unknown truncation %q (valid: none, intelligent)", p.Truncation)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", p.MaxTokens)
	}
	return nil
}

// Category is a semantic clause category. Lower Rank values are kept longer.
type Category string

const (
	CategorySubject     Category = "subject"
	CategoryAction      Category = "action"
	CategoryEnvironment Category = "environment"
	CategoryLighting    Category = "lighting"
	CategoryAtmosphere  Category = "atmosphere"
	CategoryStyle       Category = "style"
)

// CompressionPriority is the default order, rank 1 first.
var CompressionPriority = []Category{
	CategorySubject,
	CategoryAction,
	CategoryEnvironment,
	CategoryLighting,
	CategoryAtmosphere,
	CategoryStyle,
}
