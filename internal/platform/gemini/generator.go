package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/focal-api/internal/config"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/generation"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries       = 3
	defaultBaseDelaySeconds = 2
)

// promptTemplate asks the model to break a task down into concrete subtasks
// and answer with a JSON array of titles only.
const promptTemplate = `You are helping break a task into smaller, concrete subtasks.

Task: {{.Title}}
{{- if .Notes}}
Notes: {{.Notes}}
{{- end}}
{{- if .Tags}}
Tags: {{.TagsJoined}}
{{- end}}

Suggest between 2 and 6 subtasks. Each subtask must be a single concrete
action that moves the task forward. Respond with JSON only, in this shape:

{"subtasks": ["first subtask title", "second subtask title"]}
`

type promptData struct {
	Title      string
	Notes      string
	Tags       []string
	TagsJoined string
}

type responseSchema struct {
	Subtasks []string `json:"subtasks"`
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger   *slog.Logger
	client   *genai.Client
	model    string
	template *template.Template
}

// NewGenerator creates a Gemini-backed suggestion generator.
// Returns generation.ErrInvalidConfig when the API key or model name is
// missing.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.GenerationConfig,
) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	tmpl, err := template.New("subtasks").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:   logger.With(slog.String("component", "gemini_generator")),
		client:   client,
		model:    cfg.ModelName,
		template: tmpl,
	}, nil
}

// Ensure Generator implements generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// SuggestSubtasks implements generation.Generator.SuggestSubtasks
func (g *Generator) SuggestSubtasks(ctx context.Context, task *domain.Task) ([]string, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task cannot be nil", generation.ErrGenerationFailed)
	}

	prompt, err := g.buildPrompt(task)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(response.Subtasks))
	for _, title := range response.Subtasks {
		title = strings.TrimSpace(title)
		if title != "" {
			titles = append(titles, title)
		}
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no subtasks in response", generation.ErrInvalidResponse)
	}

	return titles, nil
}

func (g *Generator) buildPrompt(task *domain.Task) (string, error) {
	data := promptData{
		Title:      task.Title,
		Notes:      task.Notes,
		Tags:       task.Tags,
		TagsJoined: strings.Join(task.Tags, ", "),
	}

	var buf bytes.Buffer
	if err := g.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (blocked content, malformed responses) are returned
// immediately; only transport-level failures are retried.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		response, err := g.callOnce(ctx, prompt)
		if err == nil {
			return response, nil
		}

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		g.logger.WarnContext(ctx, "gemini call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if attempt >= defaultMaxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, defaultMaxRetries)
		}

		backoff := float64(defaultBaseDelaySeconds) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) callOnce(ctx context.Context, prompt string) (*responseSchema, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text.String()), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &parsed, nil
}
