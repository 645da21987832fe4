package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rcliao/scene-adapter/internal/dialogue"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/prompt"
	"github.com/rcliao/scene-adapter/internal/scene"
	"github.com/rcliao/scene-adapter/internal/store"
)

type modelResponse struct {
	ID      string             `json:"id"`
	Default bool               `json:"default"`
	Profile model.ModelProfile `json:"profile"`
}

type adaptRequest struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	ShotType string `json:"shot_type"`
	Label    string `json:"label"`
}

type adaptResponse struct {
	Prompt string       `json:"prompt"`
	Stats  prompt.Stats `json:"stats"`
}

type tokensRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type tokensResponse struct {
	Model     string              `json:"model"`
	Tokens    int                 `json:"tokens"`
	Tokenizer model.TokenizerKind `json:"tokenizer"`
	MaxTokens int                 `json:"maxTokens"`
}

// dialogueRequest carries segments as raw JSON so any record shape reaches
// the normalizer.
type dialogueRequest struct {
	Segments       []json.RawMessage    `json:"segments"`
	CharacterBible model.CharacterBible `json:"character_bible"`
	NarratorVoice  string               `json:"narrator_voice"`
	Label          string               `json:"label"`
}

type durationRequest struct {
	Segments       []json.RawMessage `json:"segments"`
	WordsPerMinute *float64          `json:"words_per_minute"`
}

type elevenLabsResponse struct {
	Dialogue model.Dialogue             `json:"dialogue"`
	Payload  dialogue.ElevenLabsPayload `json:"payload"`
}

func (s *Server) listModels(c *gin.Context) {
	profiles := s.adapter.Profiles()
	out := []modelResponse{}
	for _, id := range profiles.IDs() {
		p, _ := profiles.Lookup(id)
		out = append(out, modelResponse{ID: id, Default: id == profiles.DefaultID(), Profile: p})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getModel(c *gin.Context) {
	id := c.Param("id")
	p, exact := s.adapter.Profiles().Lookup(id)
	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"exact":       exact,
		"resolvedTo":  resolvedID(s.adapter.Profiles(), id, exact),
		"profile":     p,
		"compression": p.Truncation == model.TruncationIntelligent,
	})
}

func resolvedID(p *prompt.Profiles, id string, exact bool) string {
	if exact {
		return id
	}
	return p.DefaultID()
}

func (s *Server) adaptPrompt(c *gin.Context) {
	var req adaptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	adapted := s.adapter.AdaptPrompt(req.Text, req.Model, prompt.Context{ShotType: req.ShotType})
	stats := s.adapter.GetAdaptationStats(req.Text, adapted, req.Model)

	s.record(c, store.RecordParams{
		Kind:       model.KindPrompt,
		Model:      req.Model,
		Label:      req.Label,
		Input:      req.Text,
		Output:     adapted,
		Stats:      stats,
		Compressed: stats.WasCompressed,
	})
	c.JSON(http.StatusOK, adaptResponse{Prompt: adapted, Stats: stats})
}

func (s *Server) estimateTokens(c *gin.Context) {
	var req tokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := s.adapter.GetModelConfig(req.Model)
	c.JSON(http.StatusOK, tokensResponse{
		Model:     req.Model,
		Tokens:    s.adapter.EstimateTokens(req.Text, req.Model),
		Tokenizer: p.Tokenizer,
		MaxTokens: p.MaxTokens,
	})
}

func (s *Server) bindDialogue(c *gin.Context) (dialogueRequest, []model.SpeechSegment, bool) {
	var req dialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, nil, false
	}
	if req.NarratorVoice == "" {
		req.NarratorVoice = s.narrator
	}
	return req, dialogue.NormalizeAll(req.Segments), true
}

func (s *Server) buildDialogue(c *gin.Context) {
	req, segs, ok := s.bindDialogue(c)
	if !ok {
		return
	}
	d := s.assembler.BuildDialogue(segs, req.CharacterBible, req.NarratorVoice)
	s.recordDialogue(c, req, segs, d)
	c.JSON(http.StatusOK, d)
}

func (s *Server) assembleDialogue(c *gin.Context) {
	req, segs, ok := s.bindDialogue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dialogue.AssembleFromSegments(segs, req.CharacterBible))
}

func (s *Server) formatElevenLabs(c *gin.Context) {
	req, segs, ok := s.bindDialogue(c)
	if !ok {
		return
	}
	d := s.assembler.BuildDialogue(segs, req.CharacterBible, req.NarratorVoice)
	s.recordDialogue(c, req, segs, d)
	c.JSON(http.StatusOK, elevenLabsResponse{Dialogue: d, Payload: dialogue.FormatForElevenLabs(d)})
}

func (s *Server) recordDialogue(c *gin.Context, req dialogueRequest, segs []model.SpeechSegment, d model.Dialogue) {
	if s.journal == nil {
		return
	}
	in, _ := json.Marshal(segs)
	out, _ := json.Marshal(d.Turns)
	s.record(c, store.RecordParams{
		Kind:   model.KindDialogue,
		Label:  req.Label,
		Input:  string(in),
		Output: string(out),
		Stats:  d.Statistics,
	})
}

func (s *Server) estimateDuration(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wpm := s.assembler.Options().WordsPerMinute
	if req.WordsPerMinute != nil {
		wpm = *req.WordsPerMinute
	}

	segs := dialogue.NormalizeAll(req.Segments)
	secs, err := dialogue.EstimateDuration(segs, wpm)
	if errors.Is(err, dialogue.ErrInvalidArgument) {
		badRequest(c, err)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seconds":        secs,
		"wordsPerMinute": wpm,
		"segments":       len(segs),
		"wordCount":      dialogue.WordCount(segs),
	})
}

func (s *Server) prepareScenes(c *gin.Context) {
	var p scene.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if p.NarratorVoice == "" {
		p.NarratorVoice = s.narrator
	}
	res := s.preparer.Prepare(p)

	if s.journal != nil {
		for _, e := range res.JournalEntries(uuid.NewString()) {
			s.record(c, e)
		}
	}
	c.JSON(http.StatusOK, res)
}
