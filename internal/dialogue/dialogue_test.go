package dialogue

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/rcliao/scene-adapter/internal/model"
)

var testBible = model.CharacterBible{Characters: []model.CharacterBibleEntry{
	{ID: "c-alice", Name: "Alice", Voice: model.Voice{ID: "voice-alice"}},
	{Name: "Marcus", Gender: "Male"},
	{Name: "Mira", Voice: model.Voice{Gender: "female"}},
	{Name: "Robin", Gender: "nonbinary"},
}}

func TestNormalize(t *testing.T) {
	seg := Normalize(map[string]any{"text": "hi"}, 3)
	if seg.Speaker != model.Narrator {
		t.Errorf("expected NARRATOR default, got %q", seg.Speaker)
	}
	if seg.Type != model.TypeDialogue {
		t.Errorf("expected dialogue default, got %q", seg.Type)
	}
	if seg.Order == nil || *seg.Order != 3 {
		t.Errorf("expected order 3, got %v", seg.Order)
	}
	if !strings.HasPrefix(seg.ID, "seg-") {
		t.Errorf("expected generated id, got %q", seg.ID)
	}

	rec := Normalize(map[string]any{
		"name":        "Alice",
		"text":        "Hello",
		"type":        "Monologue",
		"order":       float64(7),
		"characterId": "c1",
		"id":          "s1",
	}, 0)
	if rec.Speaker != "Alice" || rec.Type != model.TypeMonologue || *rec.Order != 7 || rec.CharacterID != "c1" || rec.ID != "s1" {
		t.Errorf("unexpected record normalization: %+v", rec)
	}

	raw := Normalize(json.RawMessage(`{"speaker":"Bob","text":"Yo","order":"2"}`), 0)
	if raw.Speaker != "Bob" || *raw.Order != 2 {
		t.Errorf("unexpected json normalization: %+v", raw)
	}

	typed := model.NewInternalSegment("Alice", "thinking")
	typed.ID = "keep"
	got := Normalize(&typed, 5)
	if got.ID != "keep" || got.Type != model.TypeInternal || *got.Order != 5 {
		t.Errorf("unexpected typed normalization: %+v", got)
	}

	mixed := Normalize(model.SpeechSegment{Speaker: "Alice", Text: "Hi", Type: " Dialogue"}, 0)
	if mixed.Type != model.TypeDialogue || !mixed.Type.NeedsLipSync() || len(mixed.Validate()) != 0 {
		t.Errorf("expected typed input case-folded like records, got %+v", mixed)
	}

	var decoded model.SpeechSegment
	if err := json.Unmarshal([]byte(`{"speaker":"Bob","text":"Yo","type":"MONOLOGUE"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	d := BuildDialogue([]model.SpeechSegment{decoded}, model.CharacterBible{}, "")
	if d.Turns[0].Type != model.TypeMonologue || !d.Turns[0].NeedsLipSync {
		t.Errorf("expected decoded struct type folded, got %+v", d.Turns[0])
	}

	empty := Normalize(42, 1)
	if empty.Text != "" || empty.Speaker != model.Narrator {
		t.Errorf("expected empty default segment, got %+v", empty)
	}
}

func TestResolveVoice(t *testing.T) {
	tests := []struct {
		speaker  string
		narrator string
		want     string
	}{
		{"NARRATOR", "calm", "calm"},
		{" narrator ", "", DefaultNarratorVoice},
		{"alice", "calm", "voice-alice"},
		{"MARCUS", "calm", "onyx"},
		{"Mira", "calm", "nova"},
		{"Stranger", "calm", "echo"},
		{"Bob", "calm", "nova"},
		{"Mystery Guest", "calm", "nova"},
	}
	for _, tt := range tests {
		if got := ResolveVoice(tt.speaker, testBible, tt.narrator); got != tt.want {
			t.Errorf("ResolveVoice(%q) = %q, want %q", tt.speaker, got, tt.want)
		}
	}

	// An unrecognized gender hint falls through to the hash.
	if got, want := ResolveVoice("Robin", testBible, ""), ResolveVoice("Robin", model.CharacterBible{}, ""); got != want {
		t.Errorf("expected hash fallback for unknown gender, got %q want %q", got, want)
	}
}

func TestResolveVoice_HashIsCaseInsensitive(t *testing.T) {
	a := ResolveVoice("  stranger", model.CharacterBible{}, "")
	b := ResolveVoice("STRANGER ", model.CharacterBible{}, "")
	if a != b {
		t.Errorf("expected same voice, got %q and %q", a, b)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(DefaultResolver(), testBible, "")
	if v := reg.Resolve("alice"); v != "voice-alice" {
		t.Errorf("unexpected voice %q", v)
	}
	reg.Resolve("Alice")
	reg.Resolve("narrator")
	got := reg.Assignments()
	if len(got) != 2 || got["ALICE"] != "voice-alice" || got["NARRATOR"] != DefaultNarratorVoice {
		t.Errorf("unexpected assignments %v", got)
	}
	got["ALICE"] = "mutated"
	if reg.Resolve("alice") != "voice-alice" {
		t.Error("assignments copy leaked into registry")
	}
}

func TestCountWords(t *testing.T) {
	tests := map[string]int{
		"":                       0,
		"Hello there":            2,
		"don't stop":             2,
		"well-known fact":        2,
		"  spaced   out  ":       2,
		"I have 3 apples!":       3,
		"Hello, world... again?": 3,
	}
	for in, want := range tests {
		if got := CountWords(in); got != want {
			t.Errorf("CountWords(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestEstimateDuration(t *testing.T) {
	segs := []model.SpeechSegment{
		{Text: "Hello there"},
		{Text: "Hi"},
	}
	got, err := EstimateDuration(segs, 150)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	// 3 words at 150 wpm is 1.2s plus one pause.
	if got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}

	single, _ := EstimateDuration(segs[:1], 150)
	if single != 0.8 {
		t.Errorf("expected 0.8, got %v", single)
	}
	none, _ := EstimateDuration(nil, 150)
	if none != 0 {
		t.Errorf("expected 0 for no segments, got %v", none)
	}

	for _, wpm := range []float64{0, -10} {
		if _, err := EstimateDuration(segs, wpm); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("wpm %v: expected ErrInvalidArgument, got %v", wpm, err)
		}
	}
}

func TestBuildDialogue_Timing(t *testing.T) {
	segs := []model.SpeechSegment{
		{Speaker: "A", Text: "Hello there"},
		{Speaker: "B", Text: "Hi"},
	}
	d := BuildDialogue(segs, model.CharacterBible{}, "")
	if len(d.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(d.Turns))
	}
	first, second := d.Turns[0], d.Turns[1]
	if first.StartTime != 0 {
		t.Errorf("expected first start 0, got %v", first.StartTime)
	}
	if first.Duration != 0.8 || second.Duration != 0.4 {
		t.Errorf("unexpected durations %v %v", first.Duration, second.Duration)
	}
	if second.StartTime != first.Duration+0.3 {
		t.Errorf("expected second start %v, got %v", first.Duration+0.3, second.StartTime)
	}
	if first.EndTime > second.StartTime {
		t.Error("turns overlap")
	}
	if d.EstimatedDuration != second.EndTime {
		t.Errorf("expected estimated duration %v, got %v", second.EndTime, d.EstimatedDuration)
	}
}

func TestBuildDialogue_SkipsEmptyWithoutBreakingTiming(t *testing.T) {
	segs := []model.SpeechSegment{
		{Speaker: "A", Text: "Hello there"},
		{Speaker: "A", Text: "   "},
		{Speaker: "B", Text: "Hi"},
	}
	d := BuildDialogue(segs, model.CharacterBible{}, "")
	if len(d.Turns) != 2 {
		t.Fatalf("expected empty segment skipped, got %d turns", len(d.Turns))
	}
	if d.Turns[1].StartTime != d.Turns[0].EndTime+0.3 {
		t.Errorf("skipped segment disturbed timing: %+v", d.Turns)
	}
	if d.Turns[0].Order >= d.Turns[1].Order {
		t.Errorf("expected increasing order, got %d then %d", d.Turns[0].Order, d.Turns[1].Order)
	}
}

func TestBuildDialogue_Empty(t *testing.T) {
	d := BuildDialogue(nil, model.CharacterBible{}, "")
	if d.EstimatedDuration != 0 || len(d.Turns) != 0 || d.Statistics.TurnCount != 0 {
		t.Errorf("expected empty dialogue, got %+v", d)
	}
}

func TestBuildDialogue_SpeakersAndStatistics(t *testing.T) {
	segs := []model.SpeechSegment{
		model.NewNarratorSegment("The night was cold."),
		model.NewDialogueSegment("Alice", "Who's there?"),
		model.NewInternalSegment("Marcus", "She heard me."),
		model.NewMonologueSegment("Alice", "I know you're there."),
	}
	d := BuildDialogue(segs, testBible, "deep")

	wantSpeakers := []model.SpeakerVoice{
		{Name: model.Narrator, VoiceID: "deep"},
		{Name: "Alice", VoiceID: "voice-alice"},
		{Name: "Marcus", VoiceID: "onyx"},
	}
	if len(d.Speakers) != len(wantSpeakers) {
		t.Fatalf("unexpected speakers %+v", d.Speakers)
	}
	for i, s := range wantSpeakers {
		if d.Speakers[i] != s {
			t.Errorf("speaker %d: got %+v, want %+v", i, d.Speakers[i], s)
		}
	}
	if v, ok := d.VoiceFor("Marcus"); !ok || v != "onyx" {
		t.Errorf("VoiceFor(Marcus) = %q %v", v, ok)
	}

	st := d.Statistics
	if st.TurnCount != 4 || st.SpeakerCount != 3 || st.LipSyncTurns != 2 || st.VoiceoverTurns != 2 {
		t.Errorf("unexpected statistics %+v", st)
	}
	if d.Turns[0].NeedsLipSync || !d.Turns[1].NeedsLipSync {
		t.Errorf("unexpected lip-sync flags")
	}
}

func TestBuildDialogue_StableFallbackAcrossCalls(t *testing.T) {
	segs := []model.SpeechSegment{{Speaker: "Unmapped Visitor", Text: "Good evening"}}
	first := BuildDialogue(segs, model.CharacterBible{}, "")
	second := BuildDialogue(segs, model.CharacterBible{}, "")
	if first.Turns[0].VoiceID != second.Turns[0].VoiceID {
		t.Errorf("expected identical fallback voice, got %q and %q", first.Turns[0].VoiceID, second.Turns[0].VoiceID)
	}
}

func TestBuildDialogue_ConcurrentBuildsAreIsolated(t *testing.T) {
	bibleA := model.CharacterBible{Characters: []model.CharacterBibleEntry{{Name: "Sam", Voice: model.Voice{ID: "project-a"}}}}
	bibleB := model.CharacterBible{Characters: []model.CharacterBibleEntry{{Name: "Sam", Voice: model.Voice{ID: "project-b"}}}}
	segs := []model.SpeechSegment{{Speaker: "Sam", Text: "Hello"}}

	var wg sync.WaitGroup
	errs := make(chan string, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if v := BuildDialogue(segs, bibleA, "").Turns[0].VoiceID; v != "project-a" {
				errs <- v
			}
		}()
		go func() {
			defer wg.Done()
			if v := BuildDialogue(segs, bibleB, "").Turns[0].VoiceID; v != "project-b" {
				errs <- v
			}
		}()
	}
	wg.Wait()
	close(errs)
	for v := range errs {
		t.Errorf("voice leaked across builds: %q", v)
	}
}

func TestNew(t *testing.T) {
	for _, opts := range []Options{
		{WordsPerMinute: 0},
		{WordsPerMinute: -10},
		{WordsPerMinute: math.NaN()},
		{WordsPerMinute: math.Inf(1)},
		{WordsPerMinute: math.Inf(-1)},
		{WordsPerMinute: 150, TransitionPause: -0.1},
		{WordsPerMinute: 150, TransitionPause: math.NaN()},
	} {
		if _, err := New(opts); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(%+v): expected ErrInvalidArgument, got %v", opts, err)
		}
	}
	a, err := New(Options{WordsPerMinute: 300, TransitionPause: 0.5, Resolver: DefaultResolver()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d := a.BuildDialogue([]model.SpeechSegment{{Text: "Hello there"}, {Text: "Hi"}}, model.CharacterBible{}, "")
	if d.Turns[0].Duration != 0.4 || d.Turns[1].StartTime != 0.4+0.5 {
		t.Errorf("custom options not applied: %+v", d.Turns)
	}
}

func TestAssembleFromSegments(t *testing.T) {
	segs := []model.SpeechSegment{
		{Speaker: "Alice", Text: "Hello there"},
		{Speaker: "ALICE ", Text: "Again"},
		{Speaker: "Marcus", Text: ""},
		{Speaker: "Marcus", Text: "Fine"},
		{Speaker: "Stranger", Text: "Hm", CharacterID: "walk-on"},
	}
	got := AssembleFromSegments(segs, testBible)

	if len(got.Segments) != 4 {
		t.Errorf("expected empty segment filtered, got %d", len(got.Segments))
	}
	if got.WordCount != 5 {
		t.Errorf("expected 5 words, got %d", got.WordCount)
	}
	want := []SpeakerSummary{
		{Name: "Alice", TurnCount: 2, CharacterID: "c-alice"},
		{Name: "Marcus", TurnCount: 1, CharacterID: "char-1"},
		{Name: "Stranger", TurnCount: 1, CharacterID: "walk-on"},
	}
	if len(got.Speakers) != len(want) {
		t.Fatalf("unexpected speakers %+v", got.Speakers)
	}
	for i := range want {
		if got.Speakers[i] != want[i] {
			t.Errorf("speaker %d: got %+v, want %+v", i, got.Speakers[i], want[i])
		}
	}
}

func TestFormatForElevenLabs(t *testing.T) {
	segs := []model.SpeechSegment{
		{Speaker: "Alice", Text: "Hello there"},
		{Speaker: "Marcus", Text: "Hi"},
		{Speaker: "Alice", Text: "Bye"},
	}
	d := BuildDialogue(segs, testBible, "")
	p := FormatForElevenLabs(d)

	if len(p.Chapters) != len(d.Turns) {
		t.Fatalf("expected %d chapters, got %d", len(d.Turns), len(p.Chapters))
	}
	for i, c := range p.Chapters {
		tr := d.Turns[i]
		if c.Speaker != tr.Speaker || c.Text != tr.Text || c.VoiceID != tr.VoiceID || c.StartTime != tr.StartTime {
			t.Errorf("chapter %d does not mirror turn: %+v vs %+v", i, c, tr)
		}
	}

	wantScript := `<speaker name="ALICE">Hello there</speaker>` + "\n" +
		`<speaker name="MARCUS">Hi</speaker>` + "\n" +
		`<speaker name="ALICE">Bye</speaker>`
	if p.Script != wantScript {
		t.Errorf("unexpected script:\n%s", p.Script)
	}
	if len(p.Speakers) != 2 || p.Speakers[0] != (ElevenLabsSpeaker{Name: "Alice", VoiceID: "voice-alice"}) {
		t.Errorf("unexpected speakers %+v", p.Speakers)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"voice_id"`) || !strings.Contains(string(b), `"start_time"`) {
		t.Errorf("unexpected wire keys: %s", b)
	}
}

func TestFormatForElevenLabs_Empty(t *testing.T) {
	p := FormatForElevenLabs(model.Dialogue{})
	if p.Script != "" || len(p.Chapters) != 0 || p.Speakers == nil {
		t.Errorf("unexpected empty payload %+v", p)
	}
}
