package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ccsnap/internal/database/sqlc"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
)

// Intern takes a reference to content, storing it if this digest has not
// been seen before. The bytes are only written on first capture.
func (w *txWriter) Intern(ctx context.Context, content []byte) (model.ContentRef, error) {
	ref := snap.HashContent(content)

	n, err := w.queries.IncrementContentReference(ctx, string(ref))
	if err != nil {
		return "", fmt.Errorf("incrementing content reference: %w", err)
	}
	if n > 0 {
		return ref, nil
	}

	// The upsert still increments if another writer inserted the digest
	// since the UPDATE above.
	err = w.queries.InsertContentEntry(ctx, sqlc.InsertContentEntryParams{
		ContentHash:     string(ref),
		Content:         content,
		SizeBytes:       int64(len(content)),
		FirstCapturedAt: w.clock.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("inserting content: %w", err)
	}
	return ref, nil
}

// Release drops one reference. Releasing an unknown or already-zero entry
// is an error, since it means the counts have drifted.
func (w *txWriter) Release(ctx context.Context, ref model.ContentRef) error {
	n, err := w.queries.DecrementContentReference(ctx, string(ref))
	if err != nil {
		return fmt.Errorf("decrementing content reference: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("content %s has no references to release", ref)
	}
	return nil
}

func (w *txWriter) GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error) {
	return getContent(ctx, w.queries, ref)
}

func getContent(ctx context.Context, q *sqlc.Queries, ref model.ContentRef) (*model.ContentEntry, error) {
	row, err := q.GetContentEntry(ctx, string(ref))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding content: %w", err)
	}
	return &model.ContentEntry{
		ContentHash:     model.ContentRef(row.ContentHash),
		Content:         row.Content,
		SizeBytes:       row.SizeBytes,
		ReferenceCount:  row.ReferenceCount,
		FirstCapturedAt: row.FirstCapturedAt,
	}, nil
}
