package store

import (
	"context"
	"fmt"
)

// InsertPolicyDocument creates a policy document row.
func (s *Store) InsertPolicyDocument(ctx context.Context, d PolicyDocument) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_documents (id, title, category, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Title, d.Category, d.Content, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert policy document: %w", err)
	}
	return nil
}

// ListPolicyDocuments returns policy documents, optionally by category.
func (s *Store) ListPolicyDocuments(ctx context.Context, category string) ([]PolicyDocument, error) {
	q := `SELECT id, title, category, content, created_at FROM policy_documents`
	var args []any
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY title`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list policy documents: %w", err)
	}
	defer rows.Close()

	var docs []PolicyDocument
	for rows.Next() {
		var d PolicyDocument
		if err := rows.Scan(&d.ID, &d.Title, &d.Category, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan policy document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SearchPolicyDocuments returns documents whose title or content matches
// the query, case-insensitively. Retrieval for the copilot surface.
func (s *Store) SearchPolicyDocuments(ctx context.Context, query string, limit int) ([]PolicyDocument, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, content, created_at FROM policy_documents
		 WHERE title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%'
		 ORDER BY title LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search policy documents: %w", err)
	}
	defer rows.Close()

	var docs []PolicyDocument
	for rows.Next() {
		var d PolicyDocument
		if err := rows.Scan(&d.ID, &d.Title, &d.Category, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan policy document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// InsertPolicyEmbeddings bulk-stores embedded chunks for a document.
func (s *Store) InsertPolicyEmbeddings(ctx context.Context, embeddings []PolicyEmbedding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert policy embeddings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO policy_embeddings (document_id, chunk_index, chunk_text, embedding)
		 VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("insert policy embeddings: %w", err)
	}
	defer stmt.Close()

	for _, e := range embeddings {
		if _, err := stmt.ExecContext(ctx, e.DocumentID, e.ChunkIndex, e.ChunkText, []byte(e.Embedding)); err != nil {
			return fmt.Errorf("insert embedding chunk %d: %w", e.ChunkIndex, err)
		}
	}
	return tx.Commit()
}
