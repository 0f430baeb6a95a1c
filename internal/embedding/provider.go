package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks materia/internal/embedding Provider

import "context"

// Provider defines the interface for generating text embeddings.
// Implementations must be deterministic for a fixed model identifier and
// return vectors of a fixed dimension.
type Provider interface {
	// Embed generates an embedding for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple text strings,
	// one vector per input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
