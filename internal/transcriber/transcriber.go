// Package transcriber turns audio files into transcript artifacts using the
// Whisper API, splitting long recordings into time chunks and re-basing
// chunk timestamps before merging.
package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creachadair/atomicfile"
	openai "github.com/sashabaranov/go-openai"

	"jamesfarrell.me/youtube-ai-helper/internal/config"
	"jamesfarrell.me/youtube-ai-helper/internal/subtitle"
)

// maxUploadBytes keeps chunk files under the transcription API's 25MB
// request limit with some margin.
const maxUploadBytes = 24 << 20

// defaultChunkLength bounds a single transcription request.
const defaultChunkLength = time.Hour

// SpeechClient is the transcription surface of the AI client.
type SpeechClient interface {
	Transcribe(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// AudioTool is the ffmpeg/ffprobe surface used for chunking.
type AudioTool interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	CutAudio(ctx context.Context, inputPath string, start, length time.Duration, outputPath string) error
}

// Result holds the merged transcription of one audio file.
type Result struct {
	Segments []subtitle.Entry
	Words    []subtitle.Entry
	Raw      []openai.AudioResponse
}

// Transcriber runs the chunk/transcribe/merge sequence.
type Transcriber struct {
	client      SpeechClient
	audio       AudioTool
	whisper     config.WhisperConfig
	chunkLength time.Duration
	sizeLimit   int64
}

func New(client SpeechClient, audio AudioTool, whisper config.WhisperConfig) *Transcriber {
	return &Transcriber{
		client:      client,
		audio:       audio,
		whisper:     whisper,
		chunkLength: defaultChunkLength,
		sizeLimit:   maxUploadBytes,
	}
}

// TranscribeFile transcribes one audio file. Files small enough for a single
// request are sent whole; larger files are cut into contiguous chunks whose
// transcripts are shifted by the chunk's start offset and merged in order.
func (t *Transcriber) TranscribeFile(ctx context.Context, audioPath string) (*Result, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("audio file %s: %w", audioPath, err)
	}

	spans := []ChunkSpan{{}}
	split := info.Size() > t.sizeLimit
	if split {
		total, err := t.audio.ProbeDuration(ctx, audioPath)
		if err != nil {
			return nil, err
		}
		spans = PlanChunks(total, t.chunkLength)
		slog.Info("splitting audio for transcription",
			"path", audioPath, "size", info.Size(), "duration", total, "chunks", len(spans))
	}

	result := &Result{}
	var segmentLists, wordLists [][]subtitle.Entry
	for i, span := range spans {
		chunkPath := audioPath
		if split {
			chunkPath = chunkFileName(audioPath, span)
			if err := t.audio.CutAudio(ctx, audioPath, span.Start, span.Length, chunkPath); err != nil {
				return nil, err
			}
		}

		slog.Info("transcribing chunk", "chunk", i+1, "of", len(spans), "path", chunkPath)
		resp, err := t.client.Transcribe(ctx, t.buildRequest(chunkPath))
		if split {
			if rmErr := os.Remove(chunkPath); rmErr != nil {
				slog.Warn("could not remove chunk file", "path", chunkPath, "error", rmErr)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("transcribing chunk %d of %s: %w", i+1, audioPath, err)
		}

		segments, words := entriesFromResponse(resp)
		segmentLists = append(segmentLists, subtitle.Offset(segments, span.Start))
		wordLists = append(wordLists, subtitle.Offset(words, span.Start))
		result.Raw = append(result.Raw, resp)
	}

	result.Segments = subtitle.Merge(segmentLists...)
	result.Words = subtitle.Merge(wordLists...)
	return result, nil
}

// TranscribeFolder transcribes every audio file in folder and writes the
// artifacts next to each file. A .vtt file in the folder (captions that
// came with the download) is converted directly instead of calling the API.
func (t *Transcriber) TranscribeFolder(ctx context.Context, folder string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("reading folder %s: %w", folder, err)
	}
	var audioFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".vtt":
			return t.convertCaptions(filepath.Join(folder, e.Name()), folder)
		case ".ogg", ".mp3", ".wav", ".m4a":
			audioFiles = append(audioFiles, filepath.Join(folder, e.Name()))
		}
	}
	if len(audioFiles) == 0 {
		return fmt.Errorf("no audio files found in %s", folder)
	}
	for _, path := range audioFiles {
		result, err := t.TranscribeFile(ctx, path)
		if err != nil {
			return err
		}
		if err := result.Save(filepath.Dir(path)); err != nil {
			return err
		}
	}
	return nil
}

// convertCaptions builds the transcript artifacts from an existing VTT
// caption file. Word-level artifacts stay empty; captions carry no word
// timing.
func (t *Transcriber) convertCaptions(vttPath, folder string) error {
	data, err := os.ReadFile(vttPath)
	if err != nil {
		return fmt.Errorf("reading captions %s: %w", vttPath, err)
	}
	segments, err := subtitle.ParseVTT(string(data))
	if err != nil {
		return fmt.Errorf("parsing captions %s: %w", vttPath, err)
	}
	slog.Info("converting existing captions", "file", vttPath, "cues", len(segments))
	result := &Result{Segments: subtitle.Merge(segments)}
	return result.Save(folder)
}

func (t *Transcriber) buildRequest(path string) openai.AudioRequest {
	return openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    path,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Language:    t.whisper.Language,
		Temperature: t.whisper.Temperature,
		Prompt:      t.whisper.Prompt,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	}
}

// entriesFromResponse converts a verbose_json response into segment and word
// cue lists with chunk-local timestamps.
func entriesFromResponse(resp openai.AudioResponse) (segments, words []subtitle.Entry) {
	for i, s := range resp.Segments {
		segments = append(segments, subtitle.NewEntry(i+1, secondsToDuration(s.Start), secondsToDuration(s.End), s.Text))
	}
	for i, w := range resp.Words {
		words = append(words, subtitle.NewEntry(i+1, secondsToDuration(w.Start), secondsToDuration(w.End), w.Word))
	}
	return segments, words
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// chunkFileName names a temporary chunk file after its second range, e.g.
// audio_part120-240.ogg.
func chunkFileName(audioPath string, span ChunkSpan) string {
	ext := filepath.Ext(audioPath)
	base := strings.TrimSuffix(audioPath, ext)
	return fmt.Sprintf("%s_part%d-%d%s", base, int(span.Start.Seconds()), int(span.End().Seconds()), ext)
}

// Save writes transcript.txt, transcript.srt, transcript.word.srt,
// transcript.llmsrt and raw_responses.json into folder.
func (r *Result) Save(folder string) error {
	files := map[string]string{
		"transcript.txt":      subtitle.PlainText(r.Segments),
		"transcript.srt":      subtitle.ComposeSRT(r.Segments),
		"transcript.word.srt": subtitle.ComposeSRT(r.Words),
		"transcript.llmsrt":   subtitle.LLMText(r.Segments),
	}
	for name, content := range files {
		path := filepath.Join(folder, name)
		if err := atomicfile.WriteData(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	raw, err := json.MarshalIndent(r.Raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding raw responses: %w", err)
	}
	rawPath := filepath.Join(folder, "raw_responses.json")
	if err := atomicfile.WriteData(rawPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rawPath, err)
	}

	slog.Info("saved transcript artifacts", "folder", folder,
		"segments", len(r.Segments), "words", len(r.Words))
	return nil
}
