package clause

import (
	"regexp"
	"strings"

	"github.com/rcliao/scene-adapter/internal/model"
)

// Classifier detects one category. ok is false when the clause carries no
// cue the classifier recognizes.
type Classifier interface {
	Classify(c Clause) (cat model.Category, ok bool)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(c Clause) (model.Category, bool)

func (f ClassifierFunc) Classify(c Clause) (model.Category, bool) { return f(c) }

// Chain tries classifiers in order, first match wins.
type Chain []Classifier

func (ch Chain) Classify(c Clause) (model.Category, bool) {
	for _, cl := range ch {
		if cat, ok := cl.Classify(c); ok {
			return cat, true
		}
	}
	return "", false
}

// Leading tags the first clause of a prompt as the subject.
var Leading = ClassifierFunc(func(c Clause) (model.Category, bool) {
	if c.Position == 0 {
		return model.CategorySubject, true
	}
	return "", false
})

// PatternClassifier tags clauses matching a regular expression.
type PatternClassifier struct {
	Category model.Category
	Pattern  *regexp.Regexp
}

func (p PatternClassifier) Classify(c Clause) (model.Category, bool) {
	if p.Pattern.MatchString(c.Text) {
		return p.Category, true
	}
	return "", false
}

// Keywords builds a case-insensitive whole-word classifier.
func Keywords(cat model.Category, words ...string) PatternClassifier {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return PatternClassifier{
		Category: cat,
		Pattern:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

var (
	// StyleMarkers are render/quality markers that carry no scene content.
	StyleMarkers = []string{
		"8K", "4K", "2K", "1080p", "ultra HD", "UHD",
		"photorealistic", "hyper-realistic", "hyperrealistic", "realistic",
		"ultra detailed", "highly detailed", "extremely detailed", "detailed",
		"ultra high quality", "high quality", "best quality", "quality",
		"masterpiece", "professional", "award-winning", "award winning",
		"sharp focus", "intricate details", "fine details",
		"octane render", "unreal engine", "ray tracing", "render", "rendering",
		"volumetric lighting", "subsurface scattering",
		"film grain", "analog film", "35mm film", "color grading", "colour grading",
		"bokeh", "depth of field", "shallow depth of field",
		"DSLR", "shot on", "Canon", "Sony", "Arri", "lens", "resolution",
		"style", "aesthetic", "artistic", "photography", "trending on artstation",
	}

	// LightingCues name light sources and light quality.
	LightingCues = []string{
		"light", "lights", "lighting", "lit", "shadow", "shadows", "glow", "glowing",
		"rim light", "backlit", "backlighting", "sunlight", "moonlight", "candlelight",
		"golden hour", "blue hour", "ambient", "natural light", "soft light",
		"hard light", "diffused", "spotlight", "neon", "illuminated", "silhouette",
	}

	// ActionCues are verbs of motion and pose.
	ActionCues = []string{
		"standing", "sitting", "walking", "running", "looking", "gazing", "holding",
		"reaching", "dancing", "posing", "smiling", "laughing", "crying", "thinking",
		"jumping", "flying", "fighting", "riding", "swimming", "climbing", "falling",
		"turning", "leaning", "kneeling", "lying", "reading", "writing", "playing",
		"singing", "talking", "speaking", "eating", "drinking", "driving", "waving",
		"pointing", "hugging", "swaying", "moving", "rushing", "chasing", "floating",
		"drifting", "stands", "sits", "walks", "runs", "looks", "holds", "dances",
	}

	// EnvironmentCues name places and settings.
	EnvironmentCues = []string{
		"in a", "in the", "inside", "outside", "at the", "room", "studio", "forest",
		"city", "urban", "street", "beach", "mountain", "mountains", "sky", "background",
		"setting", "location", "scene", "landscape", "meadow", "field", "desert",
		"ocean", "sea", "river", "lake", "village", "castle", "kitchen", "office",
		"park", "garden", "marketplace", "market", "alley", "interior", "exterior",
		"cafe", "library", "classroom", "hallway", "rooftop", "harbor", "jungle",
	}

	// AtmosphereCues describe mood, weather and ambience.
	AtmosphereCues = []string{
		"moody", "atmospheric", "atmosphere", "ethereal", "dreamy", "mystical",
		"magical", "enchanting", "serene", "dramatic", "epic", "cinematic", "filmic",
		"fog", "foggy", "mist", "misty", "rain", "rainy", "snow", "snowy", "storm",
		"stormy", "haze", "hazy", "mood", "tranquil", "peaceful", "eerie", "ominous",
		"melancholic", "whimsical", "cozy", "tense", "gloomy", "romantic",
	}
)

// DefaultChain is the classifier chain used for compression. Clauses that
// match nothing are treated as subject detail by Tag.
func DefaultChain() Chain {
	return Chain{
		Leading,
		Keywords(model.CategoryStyle, StyleMarkers...),
		Keywords(model.CategoryLighting, LightingCues...),
		Keywords(model.CategoryAction, ActionCues...),
		Keywords(model.CategoryEnvironment, EnvironmentCues...),
		Keywords(model.CategoryAtmosphere, AtmosphereCues...),
	}
}

// Tag sets Category on every clause using cl, defaulting to subject.
func Tag(clauses []Clause, cl Classifier) []Clause {
	out := make([]Clause, len(clauses))
	for i, c := range clauses {
		cat, ok := cl.Classify(c)
		if !ok {
			cat = model.CategorySubject
		}
		c.Category = cat
		out[i] = c
	}
	return out
}
