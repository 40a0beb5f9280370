package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// synthesisSystemPrompt is the fixed instruction set for every extraction
// pass. The per-template instruction arrives in the user message.
const synthesisSystemPrompt = `You are an immigration assistant filling in a JSON schema from applicant documents.

Rules:
- Ensure the extracted values match the keys provided in the schema.
- If a value is missing in the documents, set it as a single blank space " ".
- Do not include titles (e.g., "Mr.", "Ms.") unless explicitly part of the name.
- Write all date-relevant information in yyyy-mm-dd format.
- For gender fields return only "male" or "female", never abbreviated forms.
- Return only the JSON. No prose before or after, even when nothing is found.`

// Client implements Embedder and Completer against the OpenAI API.
type Client struct {
	api        *openai.Client
	embedModel string
	chatModel  string

	// Concurrent embedding calls allowed in EmbedBatch.
	batchWorkers int
}

func NewClient(apiKey, embedModel, chatModel string) *Client {
	return &Client{
		api:          openai.NewClient(apiKey),
		embedModel:   embedModel,
		chatModel:    chatModel,
		batchWorkers: 10,
	}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}
	v := make([]float32, len(resp.Data[0].Embedding))
	copy(v, resp.Data[0].Embedding)
	l2normalize(v)
	return v, nil
}

// EmbedBatch embeds texts with bounded concurrency. The result keeps input
// order; the first error wins and fails the batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	errCh := make(chan error, len(texts))
	sem := make(chan struct{}, c.batchWorkers)

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			v, err := c.Embed(ctx, texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("embed chunk %d: %w", idx, err)
				return
			}
			embeddings[idx] = v
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range texts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return embeddings, nil
}

func (c *Client) Complete(ctx context.Context, contextChunks []string, instruction string) (string, error) {
	var user strings.Builder
	user.WriteString("Please fill in the missing details in the following information:\n\n<context>\n")
	user.WriteString(strings.Join(contextChunks, "\n\n"))
	user.WriteString("\n</context>\n\nQuestion: ")
	user.WriteString(instruction)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: synthesisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// l2normalize scales a vector to unit length, in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
