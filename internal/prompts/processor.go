// Package prompts runs user-authored prompt templates against a video's
// transcripts and persists each reply next to the transcript artifacts.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/creachadair/atomicfile"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the chat-completion surface the processor needs.
type ChatClient interface {
	ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, responseFormat *openai.ChatCompletionResponseFormat) (string, error)
}

// Result records the outcome of one prompt. A failed prompt carries its
// error and never blocks sibling prompts.
type Result struct {
	Name       string
	OutputPath string
	Err        error
}

// Processor runs every prompt in a configuration folder's prompts directory
// against a transcribed video folder.
type Processor struct {
	client        ChatClient
	promptsFolder string
}

func NewProcessor(client ChatClient, promptsFolder string) *Processor {
	return &Processor{client: client, promptsFolder: promptsFolder}
}

// ProcessFolder executes all prompts against the transcripts in folder.
// Per-prompt failures are recorded in the returned results; only structural
// problems (no transcripts, no prompts) fail the whole batch.
func (p *Processor) ProcessFolder(ctx context.Context, folder string) ([]Result, error) {
	if _, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("video folder %s: %w", folder, err)
	}

	promptFiles, err := p.promptFiles()
	if err != nil {
		return nil, err
	}
	if len(promptFiles) == 0 {
		return nil, fmt.Errorf("no prompt files found in %s", p.promptsFolder)
	}

	var results []Result
	for _, promptFile := range promptFiles {
		result := p.processOne(ctx, promptFile, folder)
		if result.Err != nil {
			slog.Error("prompt failed", "prompt", result.Name, "error", result.Err)
		} else {
			slog.Info("prompt completed", "prompt", result.Name, "output", result.OutputPath)
		}
		results = append(results, result)
	}

	var generated []string
	for _, r := range results {
		if r.Err == nil {
			generated = append(generated, r.OutputPath)
		}
	}
	substituteVariables(folder, generated)
	return results, nil
}

// promptFiles lists prompt templates, sorted for a stable execution order.
// Schema files live beside prompts and are not prompts themselves.
func (p *Processor) promptFiles() ([]string, error) {
	entries, err := os.ReadDir(p.promptsFolder)
	if err != nil {
		return nil, fmt.Errorf("reading prompts folder %s: %w", p.promptsFolder, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".schema.json") {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".txt", ".srt":
			files = append(files, filepath.Join(p.promptsFolder, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Processor) processOne(ctx context.Context, promptFile, folder string) Result {
	name := strings.TrimSuffix(filepath.Base(promptFile), filepath.Ext(promptFile))
	result := Result{Name: name}

	template, err := os.ReadFile(promptFile)
	if err != nil {
		result.Err = fmt.Errorf("reading prompt %s: %w", promptFile, err)
		return result
	}

	// .srt prompts consume the timestamped transcript, .txt prompts the
	// plain one.
	transcriptFile := filepath.Join(folder, "transcript.txt")
	if strings.HasSuffix(promptFile, ".srt") {
		transcriptFile = filepath.Join(folder, "transcript.llmsrt")
	}
	transcript, err := os.ReadFile(transcriptFile)
	if err != nil {
		result.Err = fmt.Errorf("transcript for prompt %s: %w", name, err)
		return result
	}

	rendered, inline := Render(string(template), string(transcript))
	var messages []openai.ChatCompletionMessage
	if inline {
		messages = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: rendered},
		}
	} else {
		messages = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rendered},
			{Role: openai.ChatMessageRoleUser, Content: string(transcript)},
		}
	}

	schema, responseFormat, err := loadSchema(promptFile, name)
	if err != nil {
		result.Err = err
		return result
	}

	reply, err := p.client.ChatCompletion(ctx, messages, responseFormat)
	if err != nil {
		result.Err = fmt.Errorf("prompt %s: %w", name, err)
		return result
	}

	extension := ".prompt.txt"
	content := []byte(reply)
	if schema != nil {
		extension = ".prompt.json"
		formatted, err := validateAgainstSchema(schema, reply)
		if err != nil {
			// Keep the raw reply around for inspection.
			rawPath := uniqueOutputPath(folder, name, extension+".raw")
			if writeErr := atomicfile.WriteData(rawPath, []byte(reply), 0o644); writeErr == nil {
				slog.Warn("schema-invalid reply preserved", "prompt", name, "path", rawPath)
			}
			result.Err = fmt.Errorf("prompt %s reply does not match schema: %w", name, err)
			return result
		}
		content = formatted
	}

	outputPath := uniqueOutputPath(folder, name, extension)
	if err := atomicfile.WriteData(outputPath, content, 0o644); err != nil {
		result.Err = fmt.Errorf("writing %s: %w", outputPath, err)
		return result
	}
	result.OutputPath = outputPath
	return result
}

// loadSchema compiles NAME.schema.json if it exists and builds the strict
// json_schema response format for the request.
func loadSchema(promptFile, name string) (*jsonschema.Schema, *openai.ChatCompletionResponseFormat, error) {
	schemaPath := filepath.Join(filepath.Dir(promptFile), name+".schema.json")
	raw, err := os.ReadFile(schemaPath)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading schema %s: %w", schemaPath, err)
	}

	schema, err := jsonschema.CompileString(schemaPath, string(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("compiling schema %s: %w", schemaPath, err)
	}

	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name + "_response",
			Schema: json.RawMessage(raw),
			Strict: true,
		},
	}
	return schema, format, nil
}

// validateAgainstSchema checks the reply parses and satisfies the schema,
// returning it re-indented.
func validateAgainstSchema(schema *jsonschema.Schema, reply string) ([]byte, error) {
	var value any
	if err := json.Unmarshal([]byte(reply), &value); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, err
	}
	return json.MarshalIndent(value, "", "  ")
}

// uniqueOutputPath returns NAME<ext>, or NAME.2<ext>, NAME.3<ext>... when
// earlier runs already produced output. Existing artifacts are never
// overwritten.
func uniqueOutputPath(folder, name, ext string) string {
	path := filepath.Join(folder, name+ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(folder, fmt.Sprintf("%s.%d%s", name, n, ext))
	}
}

var variablePattern = regexp.MustCompile(`{{(\w+)}}`)

// substituteVariables rewrites {{name}} references in generated files with
// the content of the highest-numbered name[.N].prompt.txt artifact in the
// folder, so prompts can embed each other's output.
func substituteVariables(folder string, generatedFiles []string) {
	for _, path := range generatedFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		updated := false
		text := string(content)
		for _, match := range variablePattern.FindAllStringSubmatch(text, -1) {
			replacement, ok := LoadVariableContent(folder, match[1])
			if !ok {
				continue
			}
			text = strings.ReplaceAll(text, match[0], replacement)
			updated = true
		}
		if updated {
			if err := atomicfile.WriteData(path, []byte(text), 0o644); err != nil {
				slog.Warn("could not rewrite variables", "path", path, "error", err)
				continue
			}
			slog.Info("substituted variables", "path", path)
		}
	}
}

// LoadVariableContent finds name.prompt.txt (treated as revision 0) and
// name.N.prompt.txt revisions in folder and returns the content of the
// highest revision.
func LoadVariableContent(folder, name string) (string, bool) {
	type candidate struct {
		path string
		rev  int
	}
	var candidates []candidate

	base := filepath.Join(folder, name+".prompt.txt")
	if _, err := os.Stat(base); err == nil {
		candidates = append(candidates, candidate{base, 0})
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `\.(\d+)\.prompt\.txt$`)
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		rev, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{filepath.Join(folder, e.Name()), rev})
	}
	if len(candidates) == 0 {
		return "", false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.rev > best.rev {
			best = c
		}
	}
	content, err := os.ReadFile(best.path)
	if err != nil {
		return "", false
	}
	return string(content), true
}
