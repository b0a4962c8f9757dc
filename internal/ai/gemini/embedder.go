package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

type embedCaller interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type modelsEmbedCaller struct {
	client *genai.Client
}

func (m modelsEmbedCaller) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return m.client.Models.EmbedContent(ctx, model, contents, config)
}

// EmbeddingFunc returns a chromem embedding func backed by the generator's
// genai client, so the corpus index and the grader share one API credential.
func (g *Generator) EmbeddingFunc(model string) chromem.EmbeddingFunc {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	return newEmbeddingFunc(modelsEmbedCaller{client: g.client}, model)
}

func newEmbeddingFunc(caller embedCaller, model string) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := caller.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return nil, errors.New("gemini api returned empty embedding")
		}
		return resp.Embeddings[0].Values, nil
	}
}
