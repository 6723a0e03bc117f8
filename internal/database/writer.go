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

// txWriter implements snap.SnapshotWriter on top of one transaction.
type txWriter struct {
	queries *sqlc.Queries
	clock   snap.Clock
}

func (w *txWriter) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	row, err := w.queries.GetLatestSnapshot(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Empty store
		}
		return nil, fmt.Errorf("finding latest snapshot: %w", err)
	}
	return withPaths(ctx, w.queries, &row)
}

func (w *txWriter) FindSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	return loadSnapshot(ctx, w.queries, id)
}

func (w *txWriter) InsertSnapshot(ctx context.Context, s *model.Snapshot) error {
	err := w.queries.InsertSnapshot(ctx, sqlc.InsertSnapshotParams{
		ID:                  s.ID,
		SnapshotTime:        s.SnapshotTime.UTC(),
		ContentHash:         s.ContentHash,
		TriggerType:         string(s.TriggerType),
		TriggeredBy:         s.TriggeredBy,
		Notes:               s.Notes,
		OsType:              s.OSType,
		OsVersion:           s.OSVersion,
		Hostname:            s.Hostname,
		Username:            s.Username,
		TotalLocations:      int64(s.TotalLocations),
		FilesFound:          int64(s.FilesFound),
		DirectoriesFound:    int64(s.DirectoriesFound),
		TotalSizeBytes:      s.TotalSizeBytes,
		IsBaseline:          s.IsBaseline,
		ChangedFromPrevious: nullInt(s.ChangedFromPrevious),
	})
	if err != nil {
		return fmt.Errorf("inserting snapshot row: %w", err)
	}

	for i, p := range s.Paths {
		err := w.queries.InsertSnapshotPath(ctx, sqlc.InsertSnapshotPathParams{
			SnapshotID:   s.ID,
			Position:     int64(i),
			Category:     p.Category,
			Name:         p.Name,
			PathTemplate: p.PathTemplate,
			ResolvedPath: p.ResolvedPath,
			PathExists:   p.Exists,
			PathType:     nullString(string(p.Type)),
			SizeBytes:    nullInt64(p.SizeBytes),
			ItemCount:    nullInt(p.ItemCount),
			ModifiedTime: nullTime(p.ModifiedTime),
			CreatedTime:  nullTime(p.CreatedTime),
			AccessedTime: nullTime(p.AccessedTime),
			ErrorMessage: nullString(p.ErrorMessage),
			ContentRef:   nullString(string(p.ContentRef)),
		})
		if err != nil {
			return fmt.Errorf("inserting path %s/%s: %w", p.Category, p.Name, err)
		}
	}

	for _, c := range s.Changes {
		err := w.queries.InsertSnapshotChange(ctx, sqlc.InsertSnapshotChangeParams{
			SnapshotID:         s.ID,
			ChangeType:         string(c.ChangeType),
			Category:           c.Category,
			Name:               c.Name,
			PreviousContentRef: nullString(string(c.PreviousContentRef)),
			NewContentRef:      nullString(string(c.NewContentRef)),
			PreviousSizeBytes:  nullInt64(c.PreviousSizeBytes),
			NewSizeBytes:       nullInt64(c.NewSizeBytes),
		})
		if err != nil {
			return fmt.Errorf("inserting change %s/%s: %w", c.Category, c.Name, err)
		}
	}

	return nil
}

func (w *txWriter) InsertTag(ctx context.Context, snapshotID string, tag *model.Tag) (bool, error) {
	n, err := w.queries.InsertTag(ctx, sqlc.InsertTagParams{
		ID:          tag.ID,
		SnapshotID:  snapshotID,
		TagName:     tag.TagName,
		TagType:     tag.TagType,
		Description: tag.Description,
		CreatedAt:   tag.CreatedAt.UTC(),
		CreatedBy:   tag.CreatedBy,
	})
	if err != nil {
		return false, fmt.Errorf("inserting tag: %w", err)
	}
	return n > 0, nil
}

func (w *txWriter) InsertAnnotation(ctx context.Context, snapshotID string, a *model.Annotation) error {
	err := w.queries.InsertAnnotation(ctx, sqlc.InsertAnnotationParams{
		ID:             a.ID,
		SnapshotID:     snapshotID,
		AnnotationText: a.AnnotationText,
		AnnotationType: a.AnnotationType,
		CreatedAt:      a.CreatedAt.UTC(),
		CreatedBy:      a.CreatedBy,
	})
	if err != nil {
		return fmt.Errorf("inserting annotation: %w", err)
	}
	return nil
}

func (w *txWriter) DeleteSnapshot(ctx context.Context, id string) error {
	n, err := w.queries.DeleteSnapshotByID(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %s: %w", id, snap.ErrNotFound)
	}
	return nil
}

var _ snap.SnapshotWriter = (*txWriter)(nil)
