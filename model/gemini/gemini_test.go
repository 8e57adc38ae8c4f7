package gemini

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/agentcore/model"
)

type fakeModels struct {
	resp      *genai.GenerateContentResponse
	chunks    []*genai.GenerateContentResponse
	err       error
	gotConfig *genai.GenerateContentConfig
	gotInput  []*genai.Content
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotInput, f.gotConfig = contents, cfg
	return f.resp, f.err
}

func (f *fakeModels) GenerateContentStream(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.gotInput, f.gotConfig = contents, cfg
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 2, CandidatesTokenCount: 3, TotalTokenCount: 5},
	}
}

func TestGenerate_NonStreaming(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"analysis":"x"}`)}
	m := newModel(fake)

	resp, err := model.Collect(context.Background(), m, model.Request{
		Instructions: "reply in JSON",
		JSON:         true,
		Messages:     []model.Message{{Role: "user", Content: "goal"}, {Role: "assistant", Content: "prior"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"analysis":"x"}`, resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	require.Len(t, fake.gotInput, 2)
	assert.Equal(t, genai.RoleModel, fake.gotInput[1].Role)
	assert.Equal(t, "application/json", fake.gotConfig.ResponseMIMEType)
	require.NotNil(t, fake.gotConfig.SystemInstruction)
}

func TestGenerate_Streaming(t *testing.T) {
	fake := &fakeModels{chunks: []*genai.GenerateContentResponse{textResponse("ab"), textResponse("c")}}
	resp, err := model.Collect(context.Background(), newModel(fake), model.Request{
		Stream:   true,
		Messages: []model.Message{{Role: "user", Content: "goal"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Text)
}

func TestGenerate_Error(t *testing.T) {
	fake := &fakeModels{err: errors.New("quota")}
	_, err := model.Collect(context.Background(), newModel(fake), model.Request{Messages: []model.Message{{Role: "user", Content: "goal"}}})
	assert.ErrorContains(t, err, "quota")

	_, err = model.Collect(context.Background(), newModel(&fakeModels{resp: &genai.GenerateContentResponse{}}), model.Request{Messages: []model.Message{{Role: "user", Content: "goal"}}})
	assert.ErrorContains(t, err, "no candidates")
}
