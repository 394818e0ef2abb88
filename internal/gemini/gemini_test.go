package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/cropscan/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFrom(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"results":`), genai.Text(`[]}`)}},
	}}}
	out, err := textFrom(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, out)

	_, err = textFrom(&genai.GenerateContentResponse{})
	assert.ErrorContains(t, err, "no candidates")

	_, err = textFrom(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}})
	assert.ErrorContains(t, err, "empty content")

	_, err = textFrom(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
	}}})
	assert.ErrorContains(t, err, "unexpected response format")
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	_, err := (&Gemini{}).Generate(context.Background(), providers.Config{Model: "gemini-1.5-flash"})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
