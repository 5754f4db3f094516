package model

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the vector size requested from the embedding model
const EmbeddingDimension = 768

// ConfidenceThreshold is the similarity an entry must strictly exceed for
// its answer to be returned automatically.
const ConfidenceThreshold = 0.60

// KnowledgePair is one question/answer row as read from the knowledge source
type KnowledgePair struct {
	Question string
	Answer   string
}

// KnowledgeEntry is a KnowledgePair with the embedding of its question
type KnowledgeEntry struct {
	Question string
	Answer   string
	Vector   []float64
}

// KnowledgeIndex is an immutable snapshot of embedded entries in source
// order. A nil *KnowledgeIndex behaves as an empty index.
type KnowledgeIndex struct {
	entries  []KnowledgeEntry
	source   string
	loadedAt time.Time
}

// NewKnowledgeIndex takes ownership of entries
func NewKnowledgeIndex(source string, entries []KnowledgeEntry, loadedAt time.Time) *KnowledgeIndex {
	return &KnowledgeIndex{
		entries:  entries,
		source:   source,
		loadedAt: loadedAt,
	}
}

func (x *KnowledgeIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

func (x *KnowledgeIndex) IsEmpty() bool {
	return x.Len() == 0
}

func (x *KnowledgeIndex) Source() string {
	if x == nil {
		return ""
	}
	return x.source
}

func (x *KnowledgeIndex) LoadedAt() time.Time {
	if x == nil {
		return time.Time{}
	}
	return x.loadedAt
}

// Entry returns the i-th entry in source order
func (x *KnowledgeIndex) Entry(i int) KnowledgeEntry {
	return x.entries[i]
}

// MatchResult is the outcome of scoring a query against an index
type MatchResult struct {
	Answered        bool
	Answer          string
	MatchedQuestion string
	Score           float64
}

// Best returns the position and score of the most similar entry. Ties go
// to the entry that appears first. It returns -1 for an empty index.
func (x *KnowledgeIndex) Best(query []float64) (int, float64, error) {
	best, bestScore := -1, math.Inf(-1)
	for i := 0; i < x.Len(); i++ {
		score, err := CosineSimilarity(query, x.entries[i].Vector)
		if err != nil {
			return -1, 0, goerr.Wrap(err, "failed to score entry", goerr.V("entry", i))
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return -1, 0, nil
	}
	return best, bestScore, nil
}

// Match scores query against every entry and returns the best answer when
// its similarity is strictly above ConfidenceThreshold.
func (x *KnowledgeIndex) Match(query []float64) (*MatchResult, error) {
	i, score, err := x.Best(query)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return &MatchResult{}, nil
	}

	entry := x.entries[i]
	result := &MatchResult{
		MatchedQuestion: entry.Question,
		Score:           score,
	}
	if score > ConfidenceThreshold {
		result.Answered = true
		result.Answer = entry.Answer
	}
	return result, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. A zero
// vector has no direction and scores 0 against everything.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(ErrDimensionMismatch, "cannot compare vectors",
			goerr.V("left", len(a)), goerr.V("right", len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}
