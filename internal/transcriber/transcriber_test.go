package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"jamesfarrell.me/youtube-ai-helper/internal/config"
)

// audioResponse builds a verbose_json response with one segment per span of
// segDur seconds, timestamps local to the chunk.
func audioResponse(t *testing.T, texts []string, segDur float64) openai.AudioResponse {
	t.Helper()
	type seg struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	}
	type word struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	}
	var segs []seg
	var words []word
	for i, text := range texts {
		segs = append(segs, seg{
			ID:    i,
			Start: float64(i) * segDur,
			End:   float64(i+1) * segDur,
			Text:  text,
		})
		words = append(words, word{Word: text, Start: float64(i) * segDur, End: float64(i+1) * segDur})
	}
	payload, err := json.Marshal(map[string]any{
		"task":     "transcribe",
		"text":     strings.Join(texts, " "),
		"segments": segs,
		"words":    words,
	})
	if err != nil {
		t.Fatal(err)
	}
	var resp openai.AudioResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

type fakeSpeech struct {
	responses map[string]openai.AudioResponse
	requests  []openai.AudioRequest
	err       error
}

func (f *fakeSpeech) Transcribe(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.AudioResponse{}, f.err
	}
	return f.responses[filepath.Base(req.FilePath)], nil
}

type fakeAudioTool struct {
	duration time.Duration
	cuts     []string
}

func (f *fakeAudioTool) ProbeDuration(context.Context, string) (time.Duration, error) {
	return f.duration, nil
}

func (f *fakeAudioTool) CutAudio(_ context.Context, _ string, _, _ time.Duration, outputPath string) error {
	f.cuts = append(f.cuts, filepath.Base(outputPath))
	return os.WriteFile(outputPath, []byte("chunk"), 0o644)
}

func writeAudio(t *testing.T, dir string, size int) string {
	t.Helper()
	path := filepath.Join(dir, "talk.ogg")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeFileSingleChunk(t *testing.T) {
	dir := t.TempDir()
	path := writeAudio(t, dir, 1024)

	speech := &fakeSpeech{responses: map[string]openai.AudioResponse{
		"talk.ogg": audioResponse(t, []string{"hello", "world"}, 2),
	}}
	tr := New(speech, &fakeAudioTool{}, config.WhisperConfig{Language: "en"})

	result, err := tr.TranscribeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(result.Segments))
	}
	if result.Segments[0].Text != "hello" || result.Segments[1].Text != "world" {
		t.Errorf("segments = %+v", result.Segments)
	}
	if result.Segments[1].Start != 2*time.Second {
		t.Errorf("second segment starts at %v, want 2s", result.Segments[1].Start)
	}
	if len(speech.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(speech.requests))
	}
	req := speech.requests[0]
	if req.Language != "en" || req.Format != openai.AudioResponseFormatVerboseJSON {
		t.Errorf("request = %+v", req)
	}
}

func TestTranscribeFileChunksAndRebases(t *testing.T) {
	dir := t.TempDir()
	path := writeAudio(t, dir, 4096)

	// Two 30s chunks over a 60s file.
	speech := &fakeSpeech{responses: map[string]openai.AudioResponse{
		"talk_part0-30.ogg":  audioResponse(t, []string{"first", "second"}, 15),
		"talk_part30-60.ogg": audioResponse(t, []string{"third", "fourth"}, 15),
	}}
	audio := &fakeAudioTool{duration: time.Minute}
	tr := New(speech, audio, config.WhisperConfig{})
	tr.sizeLimit = 1024
	tr.chunkLength = 30 * time.Second

	result, err := tr.TranscribeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if len(result.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(result.Segments))
	}

	// Second chunk re-based by 30s and globally monotonic.
	wantStarts := []time.Duration{0, 15 * time.Second, 30 * time.Second, 45 * time.Second}
	for i, want := range wantStarts {
		if result.Segments[i].Start != want {
			t.Errorf("segment %d starts at %v, want %v", i, result.Segments[i].Start, want)
		}
		if result.Segments[i].Index != i+1 {
			t.Errorf("segment %d has index %d", i, result.Segments[i].Index)
		}
	}
	if got := []string{audio.cuts[0], audio.cuts[1]}; got[0] != "talk_part0-30.ogg" || got[1] != "talk_part30-60.ogg" {
		t.Errorf("cut files = %v", got)
	}

	// Chunk files cleaned up after transcription.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), "_part") {
			t.Errorf("chunk file %s left behind", e.Name())
		}
	}
}

func TestTranscribeFileChunkFailureAborts(t *testing.T) {
	dir := t.TempDir()
	path := writeAudio(t, dir, 4096)

	speech := &fakeSpeech{err: fmt.Errorf("api down")}
	tr := New(speech, &fakeAudioTool{duration: time.Minute}, config.WhisperConfig{})
	tr.sizeLimit = 1024
	tr.chunkLength = 30 * time.Second

	if _, err := tr.TranscribeFile(context.Background(), path); err == nil {
		t.Fatal("expected error when a chunk fails")
	}
}

func TestResultSave(t *testing.T) {
	dir := t.TempDir()
	resp := audioResponse(t, []string{"hello", "world"}, 2)
	segments, words := entriesFromResponse(resp)
	result := &Result{Segments: segments, Words: words, Raw: []openai.AudioResponse{resp}}

	if err := result.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, name := range []string{"transcript.txt", "transcript.srt", "transcript.word.srt", "transcript.llmsrt", "raw_responses.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	text, err := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "hello world" {
		t.Errorf("transcript.txt = %q", text)
	}

	llm, err := os.ReadFile(filepath.Join(dir, "transcript.llmsrt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(llm), "[00:00:00] hello") {
		t.Errorf("transcript.llmsrt = %q", llm)
	}
}

func TestTranscribeFolderUsesExistingCaptions(t *testing.T) {
	dir := t.TempDir()
	writeAudio(t, dir, 1024)
	vtt := "WEBVTT\n\n00:00.000 --> 00:02.000\nhello there\n\n00:02.000 --> 00:04.000\ngeneral\n"
	if err := os.WriteFile(filepath.Join(dir, "talk.en.vtt"), []byte(vtt), 0o644); err != nil {
		t.Fatal(err)
	}

	speech := &fakeSpeech{}
	tr := New(speech, &fakeAudioTool{}, config.WhisperConfig{})

	if err := tr.TranscribeFolder(context.Background(), dir); err != nil {
		t.Fatalf("TranscribeFolder: %v", err)
	}
	if len(speech.requests) != 0 {
		t.Fatalf("made %d API requests, want 0", len(speech.requests))
	}

	srt, err := os.ReadFile(filepath.Join(dir, "transcript.srt"))
	if err != nil {
		t.Fatalf("reading transcript.srt: %v", err)
	}
	if !strings.Contains(string(srt), "hello there") || !strings.Contains(string(srt), "general") {
		t.Errorf("transcript.srt missing caption text:\n%s", srt)
	}
}
