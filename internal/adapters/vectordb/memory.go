package vectordb

import (
	"context"
	"slices"
	"sync"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// InMemoryStore keeps chunks in process memory. Used by tests and the
// "memory" store backend; nothing survives a restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]entities.Chunk // chunkID -> chunk
	order  []string                  // insertion order, for stable ties
	docs   map[string][]string       // docID -> []chunkID
}

// NewInMemoryStore creates a new in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chunks: make(map[string]entities.Chunk),
		docs:   make(map[string][]string),
	}
}

// Store upserts chunks by ID.
func (s *InMemoryStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		s.put(chunk)
	}
	return nil
}

// Replace swaps all chunks of documentID for chunks under one lock.
func (s *InMemoryStore) Replace(ctx context.Context, documentID string, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeDocument(documentID) {
		s.compact()
	}
	for _, chunk := range chunks {
		s.put(chunk)
	}
	return nil
}

// put inserts or overwrites one chunk, moving it between document
// indexes when its DocumentID changed. Caller holds mu.
func (s *InMemoryStore) put(chunk entities.Chunk) {
	old, exists := s.chunks[chunk.ID]
	switch {
	case !exists:
		s.order = append(s.order, chunk.ID)
		s.docs[chunk.DocumentID] = append(s.docs[chunk.DocumentID], chunk.ID)
	case old.DocumentID != chunk.DocumentID:
		s.unindex(old.DocumentID, chunk.ID)
		s.docs[chunk.DocumentID] = append(s.docs[chunk.DocumentID], chunk.ID)
	}
	s.chunks[chunk.ID] = chunk
}

// unindex drops chunkID from a document's index. Caller holds mu.
func (s *InMemoryStore) unindex(documentID, chunkID string) {
	ids := slices.DeleteFunc(s.docs[documentID], func(id string) bool { return id == chunkID })
	if len(ids) == 0 {
		delete(s.docs, documentID)
		return
	}
	s.docs[documentID] = ids
}

// removeDocument deletes a document's chunks but leaves order for compact.
// Caller holds mu.
func (s *InMemoryStore) removeDocument(documentID string) bool {
	chunkIDs, ok := s.docs[documentID]
	if !ok {
		return false
	}
	for _, id := range chunkIDs {
		delete(s.chunks, id)
	}
	delete(s.docs, documentID)
	return true
}

// Search finds the most similar chunks to a query embedding.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, k int) ([]entities.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]entities.QueryResult, 0, len(s.chunks))
	for _, id := range s.order {
		chunk, ok := s.chunks[id]
		if !ok {
			continue
		}
		results = append(results, entities.QueryResult{
			Chunk:     chunk,
			Score:     cosineSimilarity(embedding, chunk.Embedding),
			SourceDoc: sourceOf(chunk),
		})
	}
	return topK(results, k), nil
}

// Delete removes all chunks for a document.
func (s *InMemoryStore) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeDocument(documentID) {
		s.compact()
	}
	return nil
}

// Clear removes all data from the store.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make(map[string]entities.Chunk)
	s.docs = make(map[string][]string)
	s.order = nil
	return nil
}

// ListMetadata returns chunk metadata in insertion order.
func (s *InMemoryStore) ListMetadata(ctx context.Context) ([]entities.ChunkMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.ChunkMetadata, 0, len(s.chunks))
	for _, id := range s.order {
		if chunk, ok := s.chunks[id]; ok {
			out = append(out, chunk.Metadata)
		}
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// compact drops deleted IDs from the insertion order. Caller holds mu.
func (s *InMemoryStore) compact() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.chunks[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}
