package embedding_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
)

type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return m.generateEmbeddingFn(ctx, dimension, input)
}

func similarity(t *testing.T, a, b []float64) float64 {
	t.Helper()
	s, err := model.CosineSimilarity(a, b)
	gt.NoError(t, err).Required()
	return s
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	e := embedding.NewLocal(0)

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.Embed(ctx, "Πώς κάνω εγγραφή;")
		gt.NoError(t, err)
		b, err := e.Embed(ctx, "Πώς κάνω εγγραφή;")
		gt.NoError(t, err)
		gt.A(t, a).Length(embedding.DefaultLocalDimension)
		gt.V(t, a).Equal(b)
	})

	t.Run("identical text scores highest", func(t *testing.T) {
		a, _ := e.Embed(ctx, "How do I get an enrollment certificate?")
		b, _ := e.Embed(ctx, "how do i get an ENROLLMENT certificate")
		c, _ := e.Embed(ctx, "Where is the cafeteria menu posted?")

		gt.N(t, similarity(t, a, a)).Greater(0.999999)
		gt.N(t, similarity(t, a, b)).Greater(model.ConfidenceThreshold)
		gt.N(t, similarity(t, a, c)).Less(model.ConfidenceThreshold)
	})

	t.Run("accents and case are ignored", func(t *testing.T) {
		a, _ := e.Embed(ctx, "Εγγραφή")
		b, _ := e.Embed(ctx, "εγγραφη")
		gt.V(t, a).Equal(b)
	})

	t.Run("empty text yields zero vector", func(t *testing.T) {
		v, err := e.Embed(ctx, "  ")
		gt.NoError(t, err)
		for _, x := range v {
			gt.V(t, x).Equal(0.0)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.Embed(cctx, "anything")
		gt.B(t, errors.Is(err, model.ErrEmbedding)).True()
	})
}

func TestFold(t *testing.T) {
	got, err := embedding.Fold("Βεβαιώσεις ΣΠΟΥΔΏΝ")
	gt.NoError(t, err)
	// full case folding maps final sigma to σ
	gt.S(t, got).Equal("βεβαιωσεισ σπουδων")
}

func TestLLM(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first vector with requested dimension", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				gt.N(t, dimension).Equal(model.EmbeddingDimension)
				gt.A(t, input).Length(1)
				return [][]float64{{0.1, 0.2}}, nil
			},
		}
		e, err := embedding.NewLLM(client, "gemini-embedding")
		gt.NoError(t, err).Required()
		gt.S(t, e.Model()).Equal("gemini-embedding")

		v, err := e.Embed(ctx, "hello")
		gt.NoError(t, err)
		gt.V(t, v).Equal([]float64{0.1, 0.2})
	})

	t.Run("provider error is an embedding error", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("quota exceeded")
			},
		}
		e, err := embedding.NewLLM(client, "m", embedding.WithDimension(8))
		gt.NoError(t, err).Required()

		_, err = e.Embed(ctx, "hello")
		gt.B(t, errors.Is(err, model.ErrEmbedding)).True()
	})

	t.Run("empty response is an embedding error", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{}, nil
			},
		}
		e, _ := embedding.NewLLM(client, "m")
		_, err := e.Embed(ctx, "hello")
		gt.B(t, errors.Is(err, model.ErrEmbedding)).True()
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := embedding.NewLLM(nil, "m")
		gt.Error(t, err)
	})
}

type countingEmbedder struct {
	calls atomic.Int32
	model string
}

func (e *countingEmbedder) Model() string { return e.model }

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	return []float64{float64(len(text)), 1}, nil
}

func TestBadgerCache(t *testing.T) {
	ctx := context.Background()
	cache, err := embedding.OpenBadgerCache("", time.Hour)
	gt.NoError(t, err).Required()
	defer cache.Close()

	got, err := cache.Get(ctx, "m1", "question")
	gt.NoError(t, err)
	gt.V(t, got).Nil()

	gt.NoError(t, cache.Put(ctx, "m1", "question", []float64{0.25, -1.5})).Required()

	got, err = cache.Get(ctx, "m1", "question")
	gt.NoError(t, err)
	gt.V(t, got).Equal([]float64{0.25, -1.5})

	other, err := cache.Get(ctx, "m2", "question")
	gt.NoError(t, err)
	gt.V(t, other).Nil()
}

func TestWithCache(t *testing.T) {
	ctx := context.Background()
	cache, err := embedding.OpenBadgerCache(t.TempDir(), time.Hour)
	gt.NoError(t, err).Required()
	defer cache.Close()

	inner := &countingEmbedder{model: "counting"}
	e := embedding.WithCache(inner, cache)
	gt.S(t, e.Model()).Equal("counting")

	first, err := e.Embed(ctx, "abc")
	gt.NoError(t, err)
	second, err := e.Embed(ctx, "abc")
	gt.NoError(t, err)

	gt.V(t, second).Equal(first)
	gt.N(t, inner.calls.Load()).Equal(int32(1))

	_, err = e.Embed(ctx, "abcd")
	gt.NoError(t, err)
	gt.N(t, inner.calls.Load()).Equal(int32(2))

	gt.V(t, embedding.WithCache(inner, nil)).Equal(inner)
}
