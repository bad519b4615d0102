package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	rediscache "github.com/portalgenie/backend/internal/cache/redis"
	"github.com/portalgenie/backend/pkg/circuitbreaker"
	"github.com/portalgenie/backend/pkg/logger"
	"github.com/portalgenie/backend/pkg/utils"
)

// Client embeds text through the external embedding service. All vectors
// are normalized to unit length before they are returned, so dot product
// equals cosine similarity downstream.
type Client struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	cb       *circuitbreaker.CircuitBreaker
	cache    *rediscache.Client
	cacheTTL time.Duration
}

func NewClient(apiKey, model string, timeoutSec int, cache *rediscache.Client, cacheTTL time.Duration) *Client {
	cb := circuitbreaker.New("embedding", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Embedding client initialized", zap.String("model", model))

	return &Client{
		client:   openai.NewClient(apiKey),
		model:    model,
		timeout:  time.Duration(timeoutSec) * time.Second,
		cb:       cb,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Embed returns the unit-length embedding of text. Failures propagate to
// the caller and fail only that request; there is no automatic retry.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var cacheKey string
	if c.cache != nil {
		cacheKey = utils.HashString(text)
		if vec, ok, err := c.cache.GetEmbedding(ctx, cacheKey); err == nil && ok {
			return vec, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var vec []float32
	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateEmbeddings(
			ctx,
			openai.EmbeddingRequest{
				Input: []string{text},
				Model: openai.EmbeddingModel(c.model),
			},
		)
		if err != nil {
			return fmt.Errorf("failed to generate embedding: %w", err)
		}

		vec = make([]float32, len(resp.Data[0].Embedding))
		copy(vec, resp.Data[0].Embedding)
		return nil
	})
	if err != nil {
		return nil, err
	}

	Normalize(vec)

	if c.cache != nil {
		if err := c.cache.SetEmbedding(ctx, cacheKey, vec, c.cacheTTL); err != nil {
			logger.Warn("Failed to cache embedding", zap.Error(err))
		}
	}

	return vec, nil
}

// EmbedBatch embeds texts in chunks of 100, returning unit vectors in
// input order. Used at startup for the report corpus and intent prototypes.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32

	batchSize := 100
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.cb.Execute(reqCtx, func() error {
			resp, err := c.client.CreateEmbeddings(
				reqCtx,
				openai.EmbeddingRequest{
					Input: batch,
					Model: openai.EmbeddingModel(c.model),
				},
			)
			if err != nil {
				return fmt.Errorf("failed to generate batch embeddings: %w", err)
			}

			for _, data := range resp.Data {
				vec := make([]float32, len(data.Embedding))
				copy(vec, data.Embedding)
				Normalize(vec)
				vectors = append(vectors, vec)
			}
			return nil
		})
		cancel()
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(vectors)))

	return vectors, nil
}

// Normalize scales vec to unit length in place. Zero vectors are left
// untouched.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// MeanVector averages unit vectors and renormalizes the result. Used to
// build intent prototype vectors from example phrases.
func MeanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float32, len(vectors[0]))
	for _, vec := range vectors {
		for i, v := range vec {
			mean[i] += v
		}
	}
	n := float32(len(vectors))
	for i := range mean {
		mean[i] /= n
	}

	Normalize(mean)
	return mean
}
