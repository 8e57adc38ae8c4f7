// Package gemini provides an implementation of model.Model using the Google
// Gen AI SDK (Gemini API or Vertex AI backends).
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/hupe1980/agentcore/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// contentGenerator is the subset of *genai.Models used by the adapter.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Model wraps the Gemini generate-content API behind the generic model.Model interface.
type Model struct {
	models contentGenerator
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:           "gemini-2.0-flash",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}
}

// NewModel creates a Gemini model. With a nil config the client reads
// GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewModel(ctx context.Context, cfg *genai.ClientConfig, optFns ...func(o *Options)) (*Model, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewModelFromClient(client, optFns...), nil
}

// NewModelFromClient creates a Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	return newModel(client.Models, optFns...)
}

func newModel(models contentGenerator, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{models: models, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents := buildContents(req.Messages)
		cfg := m.buildConfig(req)

		if req.Stream {
			var text strings.Builder
			var last *genai.GenerateContentResponse
			for resp, err := range m.models.GenerateContentStream(ctx, m.opts.Model, contents, cfg) {
				if err != nil {
					errCh <- fmt.Errorf("gemini streaming error: %w", err)
					return
				}
				if delta := resp.Text(); delta != "" {
					text.WriteString(delta)
					out <- model.Response{ID: resp.ResponseID, Partial: true, Text: delta}
				}
				last = resp
			}
			final := model.Response{Text: text.String(), FinishReason: "stop"}
			if last != nil {
				final.ID = last.ResponseID
				final.FinishReason = finishReason(last)
				final.Usage = usage(last)
			}
			out <- final
			return
		}

		resp, err := m.models.GenerateContent(ctx, m.opts.Model, contents, cfg)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		if len(resp.Candidates) == 0 {
			errCh <- fmt.Errorf("gemini api returned no candidates")
			return
		}
		out <- model.Response{
			ID:           resp.ResponseID,
			Text:         resp.Text(),
			FinishReason: finishReason(resp),
			Usage:        usage(resp),
		}
	}()

	return out, errCh
}

// buildContents maps normalized messages to Gemini contents. Gemini knows only
// user and model roles; tool results are surfaced as user turns and system
// turns are moved into the system instruction by buildConfig.
func buildContents(msgs []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Content == "" || msg.Role == "system" {
			continue
		}
		switch msg.Role {
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		case "tool":
			contents = append(contents, genai.NewContentFromText("Tool result: "+msg.Content, genai.RoleUser))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents
}

func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(m.opts.Temperature),
		MaxOutputTokens: m.opts.MaxOutputTokens,
	}
	var system []string
	if req.Instructions != "" {
		system = append(system, req.Instructions)
	}
	for _, msg := range req.Messages {
		if msg.Role == "system" && msg.Content != "" {
			system = append(system, msg.Content)
		}
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].FinishReason == "" {
		return "stop"
	}
	return strings.ToLower(string(resp.Candidates[0].FinishReason))
}

func usage(resp *genai.GenerateContentResponse) *model.TokenUsage {
	if resp.UsageMetadata == nil {
		return nil
	}
	return &model.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "gemini",
		SupportsStreaming: true,
	}
}
