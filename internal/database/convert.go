package database

import (
	"database/sql"
	"time"

	"ccsnap/internal/database/sqlc"
	"ccsnap/internal/model"
)

func snapshotFromRow(r *sqlc.Snapshot) *model.Snapshot {
	s := &model.Snapshot{
		ID:               r.ID,
		SnapshotTime:     r.SnapshotTime.UTC(),
		ContentHash:      r.ContentHash,
		TriggerType:      model.TriggerType(r.TriggerType),
		TriggeredBy:      r.TriggeredBy,
		Notes:            r.Notes,
		OSType:           r.OsType,
		OSVersion:        r.OsVersion,
		Hostname:         r.Hostname,
		Username:         r.Username,
		TotalLocations:   int(r.TotalLocations),
		FilesFound:       int(r.FilesFound),
		DirectoriesFound: int(r.DirectoriesFound),
		TotalSizeBytes:   r.TotalSizeBytes,
		IsBaseline:       r.IsBaseline,
	}
	if r.ChangedFromPrevious.Valid {
		n := int(r.ChangedFromPrevious.Int64)
		s.ChangedFromPrevious = &n
	}
	return s
}

func pathFromRow(r *sqlc.SnapshotPath) *model.SnapshotPath {
	p := &model.SnapshotPath{
		Category:     r.Category,
		Name:         r.Name,
		PathTemplate: r.PathTemplate,
		ResolvedPath: r.ResolvedPath,
		Exists:       r.PathExists,
		Type:         model.PathType(r.PathType.String),
		SizeBytes:    int64Ptr(r.SizeBytes),
		ModifiedTime: timePtr(r.ModifiedTime),
		CreatedTime:  timePtr(r.CreatedTime),
		AccessedTime: timePtr(r.AccessedTime),
		ErrorMessage: r.ErrorMessage.String,
		ContentRef:   model.ContentRef(r.ContentRef.String),
	}
	if r.ItemCount.Valid {
		n := int(r.ItemCount.Int64)
		p.ItemCount = &n
	}
	return p
}

func changeFromRow(r *sqlc.SnapshotChange) *model.SnapshotChange {
	return &model.SnapshotChange{
		ChangeType:         model.ChangeType(r.ChangeType),
		Category:           r.Category,
		Name:               r.Name,
		PreviousContentRef: model.ContentRef(r.PreviousContentRef.String),
		NewContentRef:      model.ContentRef(r.NewContentRef.String),
		PreviousSizeBytes:  int64Ptr(r.PreviousSizeBytes),
		NewSizeBytes:       int64Ptr(r.NewSizeBytes),
	}
}

func tagFromRow(r *sqlc.Tag) *model.Tag {
	return &model.Tag{
		ID:          r.ID,
		TagName:     r.TagName,
		TagType:     r.TagType,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		CreatedBy:   r.CreatedBy,
	}
}

func annotationFromRow(r *sqlc.Annotation) *model.Annotation {
	return &model.Annotation{
		ID:             r.ID,
		AnnotationText: r.AnnotationText,
		AnnotationType: r.AnnotationType,
		CreatedAt:      r.CreatedAt.UTC(),
		CreatedBy:      r.CreatedBy,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}
