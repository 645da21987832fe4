package dialogue

import (
	"hash/crc32"
	"strings"

	"github.com/rcliao/scene-adapter/internal/model"
)

// DefaultNarratorVoice is used when a caller passes no narrator voice.
const DefaultNarratorVoice = "fable"

// DefaultVoicePool is the ordered fallback pool for unknown speakers.
var DefaultVoicePool = []string{"echo", "onyx", "nova", "shimmer", "alloy"}

// Resolver maps speaker names to voice ids. The zero value is not usable;
// start from DefaultResolver.
type Resolver struct {
	FemaleVoice string
	MaleVoice   string
	Pool        []string
}

// DefaultResolver returns the built-in gender mapping and fallback pool.
func DefaultResolver() Resolver {
	return Resolver{
		FemaleVoice: "nova",
		MaleVoice:   "onyx",
		Pool:        DefaultVoicePool,
	}
}

// ResolveVoice resolves speaker with the default resolver.
func ResolveVoice(speaker string, bible model.CharacterBible, narratorVoice string) string {
	return DefaultResolver().Resolve(speaker, bible, narratorVoice)
}

// Resolve applies the resolution chain: narrator, explicit bible voice,
// bible gender hint, then a hash of the normalized name over the pool.
func (r Resolver) Resolve(speaker string, bible model.CharacterBible, narratorVoice string) string {
	name := normalizeName(speaker)
	if name == model.Narrator {
		if narratorVoice == "" {
			return DefaultNarratorVoice
		}
		return narratorVoice
	}

	if entry, ok := findCharacter(bible, name); ok {
		if entry.Voice.ID != "" {
			return entry.Voice.ID
		}
		gender := entry.Gender
		if gender == "" {
			gender = entry.Voice.Gender
		}
		if v := r.byGender(gender); v != "" {
			return v
		}
	}

	return r.hashed(name)
}

func (r Resolver) byGender(gender string) string {
	g := strings.ToLower(strings.TrimSpace(gender))
	if g == "" {
		return ""
	}
	// "female" contains "male", so it is checked first.
	if strings.Contains(g, "female") || strings.Contains(g, "woman") {
		return r.FemaleVoice
	}
	if strings.Contains(g, "male") || strings.Contains(g, "man") {
		return r.MaleVoice
	}
	return ""
}

func (r Resolver) hashed(name string) string {
	pool := r.Pool
	if len(pool) == 0 {
		pool = DefaultVoicePool
	}
	h := crc32.ChecksumIEEE([]byte(name))
	return pool[h%uint32(len(pool))]
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func findCharacter(bible model.CharacterBible, normalized string) (model.CharacterBibleEntry, bool) {
	for _, c := range bible.Characters {
		if normalizeName(c.Name) == normalized {
			return c, true
		}
	}
	return model.CharacterBibleEntry{}, false
}

// Registry is a voice assignment table scoped to one build. It is not safe
// for concurrent use; create one per call.
type Registry struct {
	resolver Resolver
	bible    model.CharacterBible
	narrator string
	assigned map[string]string
}

// NewRegistry creates a registry over bible. An empty narrator voice selects
// DefaultNarratorVoice.
func NewRegistry(resolver Resolver, bible model.CharacterBible, narratorVoice string) *Registry {
	if narratorVoice == "" {
		narratorVoice = DefaultNarratorVoice
	}
	return &Registry{
		resolver: resolver,
		bible:    bible,
		narrator: narratorVoice,
		assigned: make(map[string]string),
	}
}

// Resolve returns the voice for speaker, resolving it on first use.
func (r *Registry) Resolve(speaker string) string {
	key := normalizeName(speaker)
	if v, ok := r.assigned[key]; ok {
		return v
	}
	v := r.resolver.Resolve(speaker, r.bible, r.narrator)
	r.assigned[key] = v
	return v
}

// Assignments returns a copy of the resolved table keyed by normalized name.
func (r *Registry) Assignments() map[string]string {
	out := make(map[string]string, len(r.assigned))
	for k, v := range r.assigned {
		out[k] = v
	}
	return out
}
