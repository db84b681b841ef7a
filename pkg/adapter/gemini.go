package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var ErrGatewayUnavailable = goerr.New("inference gateway unavailable")

// Gateway is the remote inference capability the engine consumes: text
// embedding and opaque inference. Both are black-box remote calls with
// configurable timeouts and no retry beyond what the backend performs.
type Gateway interface {
	// Embed converts text into a fixed-length embedding vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// Infer sends a prompt with optional context blocks and returns the
	// generated text
	Infer(ctx context.Context, prompt string, contextBlocks []string) (string, error)
}

type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	embeddingModel  string
	embedTimeout    time.Duration
	inferTimeout    time.Duration
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = model
	}
}

func WithEmbedTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiClient) {
		g.embedTimeout = d
	}
}

func WithInferTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiClient) {
		g.inferTimeout = d
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.5-flash",
		embeddingModel:  "gemini-embedding-001",
		embedTimeout:    10 * time.Second,
		inferTimeout:    45 * time.Second,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, g.embedTimeout)
	defer cancel()

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(ErrGatewayUnavailable, "embedding request failed",
			goerr.V("model", g.embeddingModel), goerr.V("cause", err.Error()))
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.Wrap(ErrGatewayUnavailable, "empty embedding response",
			goerr.V("model", g.embeddingModel))
	}

	return resp.Embeddings[0].Values, nil
}

func (g *GeminiClient) Infer(ctx context.Context, prompt string, contextBlocks []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.inferTimeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if len(contextBlocks) > 0 {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(strings.Join(contextBlocks, "\n\n"), ""),
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return "", goerr.Wrap(ErrGatewayUnavailable, "inference request failed",
			goerr.V("model", g.generativeModel), goerr.V("cause", err.Error()))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.Wrap(ErrGatewayUnavailable, "empty inference response",
			goerr.V("model", g.generativeModel))
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}

	return out.String(), nil
}
