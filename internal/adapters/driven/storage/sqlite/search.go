package sqlite

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/mapper"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// ==================== Search Engine ====================

// searchEngine implements driven.SearchEngine with FTS5 and bm25 ranking.
type searchEngine struct {
	store *Store
}

var _ driven.SearchEngine = (*searchEngine)(nil)

// Search returns content IDs matching every query term as a prefix.
func (e *searchEngine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := e.store.db.QueryContext(ctx, `
		SELECT c.id, bm25(contents_fts) AS score
		FROM contents_fts
		JOIN contents c ON c.rowid = contents_fts.rowid
		WHERE contents_fts MATCH ?
		ORDER BY score, c.id
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, storageErr("searching contents", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var (
			id   string
			rank float64
		)
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, storageErr("scanning search hit", err)
		}
		// bm25 is lower-is-better; flip it so higher scores rank first.
		hits = append(hits, driven.SearchHit{ContentID: id, Score: -rank})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating search hits", err)
	}
	return hits, nil
}

// ftsQuery turns free text into an FTS5 query where each whitespace
// separated term is a quoted prefix match. Terms are ANDed.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"*`
	}
	return strings.Join(quoted, " ")
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex by scanning every stored
// embedding. Libraries are small enough that a linear scan is fine.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Search returns the k most similar items to query, best first.
// Embeddings of a different dimension are skipped.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, nil
	}

	rows, err := v.store.db.QueryContext(ctx,
		`SELECT id, embedding FROM contents WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, storageErr("querying embeddings", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, storageErr("scanning embedding", err)
		}
		vector := mapper.DecodeEmbedding(blob)
		if len(vector) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ContentID:  id,
			Similarity: domain.CosineSimilarity(query, vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating embeddings", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ContentID < hits[j].ContentID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
