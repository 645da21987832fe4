package dialogue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rcliao/scene-adapter/internal/model"
)

// Normalize maps any supported segment representation onto a SpeechSegment
// with defaults filled in: speaker NARRATOR, type dialogue, order index and a
// generated id. Accepted inputs are SpeechSegment (value or pointer), loosely
// typed records (map[string]any, map[string]string) and raw JSON objects.
// Anything else yields an empty segment, which builders skip.
func Normalize(raw any, index int) model.SpeechSegment {
	var seg model.SpeechSegment
	switch v := raw.(type) {
	case model.SpeechSegment:
		seg = v
	case *model.SpeechSegment:
		if v != nil {
			seg = *v
		}
	case map[string]any:
		seg = fromRecord(v)
	case map[string]string:
		rec := make(map[string]any, len(v))
		for k, s := range v {
			rec[k] = s
		}
		seg = fromRecord(rec)
	case json.RawMessage:
		seg = fromJSON(v)
	case []byte:
		seg = fromJSON(v)
	}
	return withDefaults(seg, index)
}

// NormalizeAll normalizes a list of records, using list position as the
// default order.
func NormalizeAll[T any](raws []T) []model.SpeechSegment {
	out := make([]model.SpeechSegment, len(raws))
	for i, r := range raws {
		out[i] = Normalize(r, i)
	}
	return out
}

func withDefaults(seg model.SpeechSegment, index int) model.SpeechSegment {
	if strings.TrimSpace(seg.Speaker) == "" {
		seg.Speaker = model.Narrator
	}
	seg.Type = model.SegmentType(strings.ToLower(strings.TrimSpace(string(seg.Type))))
	if seg.Type == "" {
		seg.Type = model.TypeDialogue
	}
	if seg.Order == nil {
		i := index
		seg.Order = &i
	}
	if seg.ID == "" {
		seg.ID = newSegmentID()
	}
	return seg
}

func newSegmentID() string {
	return "seg-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func fromJSON(b []byte) model.SpeechSegment {
	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.SpeechSegment{}
	}
	return fromRecord(rec)
}

func fromRecord(rec map[string]any) model.SpeechSegment {
	seg := model.SpeechSegment{
		ID:          str(rec, "id"),
		Speaker:     str(rec, "speaker", "name"),
		Text:        str(rec, "text"),
		Type:        model.SegmentType(str(rec, "type")),
		Emotion:     str(rec, "emotion"),
		CharacterID: str(rec, "characterId", "character_id"),
	}
	if n, ok := integer(rec["order"]); ok {
		seg.Order = &n
	}
	return seg
}

// str returns the first non-empty value among keys.
func str(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
