package embedding

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/zeebo/blake3"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLocalDimension is the vector size of the local embedder
const DefaultLocalDimension = 512

// LocalModelName labels vectors produced by the local embedder
const LocalModelName = "local-ngram-v1"

// localEmbedder hashes character n-grams and words into a fixed-size signed
// vector. It needs no network and is deterministic, which makes it usable
// offline and in tests; its notion of similarity is lexical, not semantic.
type localEmbedder struct {
	dimension int
	ngram     int
}

var _ interfaces.Embedder = &localEmbedder{}

// NewLocal creates a local embedder. dimension <= 0 selects DefaultLocalDimension.
func NewLocal(dimension int) interfaces.Embedder {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	return &localEmbedder{dimension: dimension, ngram: 3}
}

func (e *localEmbedder) Model() string {
	return LocalModelName
}

func (e *localEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "context done", goerr.V("cause", err.Error()))
	}

	folded, err := Fold(text)
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "failed to normalize text", goerr.V("cause", err.Error()))
	}

	vec := make([]float64, e.dimension)
	for _, word := range strings.FieldsFunc(folded, isSeparator) {
		e.add(vec, "w:"+word, 1.0)

		padded := []rune(" " + word + " ")
		if len(padded) <= e.ngram {
			e.add(vec, "g:"+string(padded), 0.5)
			continue
		}
		for i := 0; i+e.ngram <= len(padded); i++ {
			e.add(vec, "g:"+string(padded[i:i+e.ngram]), 0.5)
		}
	}

	var norm2 float64
	for _, v := range vec {
		norm2 += v * v
	}
	if norm2 > 0 {
		inv := 1 / math.Sqrt(norm2)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// add hashes feature to a bucket and a sign so that collisions tend to cancel
func (e *localEmbedder) add(vec []float64, feature string, weight float64) {
	sum := blake3.Sum256([]byte(feature))
	h := binary.LittleEndian.Uint64(sum[:8])
	bucket := int(h % uint64(e.dimension))
	if sum[8]&1 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// Fold lower-cases text with full Unicode case folding and strips combining
// marks, so "Εγγραφή" and "εγγραφη" produce the same features.
func Fold(text string) (string, error) {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
		norm.NFC,
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		return "", err
	}
	return out, nil
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
