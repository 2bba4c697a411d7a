package vectordb

import (
	"cmp"
	"math"
	"slices"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// topK sorts results by score, best first, and keeps at most k.
// Equal scores keep their input order.
func topK(results []entities.QueryResult, k int) []entities.QueryResult {
	slices.SortStableFunc(results, func(a, b entities.QueryResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// sourceOf names the file a chunk came from.
func sourceOf(c entities.Chunk) string {
	if c.Metadata.Source != "" {
		return c.Metadata.Source
	}
	return c.DocumentID
}
