package database

import (
	"context"
	"fmt"
	"strings"

	"ccsnap/internal/database/sqlc"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
)

const snapshotColumns = `s.id, s.snapshot_time, s.content_hash, s.trigger_type, s.triggered_by, s.notes,
	s.os_type, s.os_version, s.hostname, s.username, s.total_locations, s.files_found,
	s.directories_found, s.total_size_bytes, s.is_baseline, s.changed_from_previous`

// ListSnapshots returns one page of summaries. The filter set is dynamic,
// so the query is assembled here rather than generated.
func (s *SQLiteDatabase) ListSnapshots(ctx context.Context, q snap.ListQuery) (*model.Page, error) {
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where, args := listFilters(q)

	var total int64
	countQuery := "SELECT COUNT(*) FROM snapshots s" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}

	offset := (page - 1) * pageSize
	selectQuery := "SELECT " + snapshotColumns + " FROM snapshots s" + where +
		" ORDER BY " + listOrder(q) + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, selectQuery, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var found []sqlc.Snapshot
	for rows.Next() {
		var r sqlc.Snapshot
		if err := rows.Scan(
			&r.ID, &r.SnapshotTime, &r.ContentHash, &r.TriggerType, &r.TriggeredBy, &r.Notes,
			&r.OsType, &r.OsVersion, &r.Hostname, &r.Username, &r.TotalLocations, &r.FilesFound,
			&r.DirectoriesFound, &r.TotalSizeBytes, &r.IsBaseline, &r.ChangedFromPrevious,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	// Tags are loaded after the cursor is closed; the pool holds one connection.
	items := make([]*model.Snapshot, len(found))
	for i := range found {
		items[i] = snapshotFromRow(&found[i])
		if items[i].Tags, err = loadTags(ctx, s.queries, found[i].ID); err != nil {
			return nil, err
		}
	}

	return &model.Page{
		Items:       items,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		HasNext:     int64(offset+len(items)) < total,
		HasPrevious: page > 1,
	}, nil
}

func listFilters(q snap.ListQuery) (string, []any) {
	var conds []string
	var args []any

	if q.TriggerType != "" {
		conds = append(conds, "s.trigger_type = ?")
		args = append(args, string(q.TriggerType))
	}

	if tags := uniqueTags(q.Tags); len(tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tags)), ", ")
		if q.MatchAllTags {
			conds = append(conds, fmt.Sprintf(
				"(SELECT COUNT(DISTINCT t.tag_name) FROM tags t WHERE t.snapshot_id = s.id AND t.tag_name IN (%s)) = ?",
				placeholders))
		} else {
			conds = append(conds, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM tags t WHERE t.snapshot_id = s.id AND t.tag_name IN (%s))",
				placeholders))
		}
		for _, t := range tags {
			args = append(args, t)
		}
		if q.MatchAllTags {
			args = append(args, len(tags))
		}
	}

	if q.Since != nil {
		conds = append(conds, "s.snapshot_time >= ?")
		args = append(args, q.Since.UTC())
	}
	if q.Until != nil {
		conds = append(conds, "s.snapshot_time <= ?")
		args = append(args, q.Until.UTC())
	}

	if q.Search != "" {
		conds = append(conds, `s.notes LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func listOrder(q snap.ListQuery) string {
	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	if q.SortBy == snap.SortBySize {
		return fmt.Sprintf("s.total_size_bytes %[1]s, s.snapshot_time %[1]s, s.rowid %[1]s", dir)
	}
	return fmt.Sprintf("s.snapshot_time %[1]s, s.rowid %[1]s", dir)
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
