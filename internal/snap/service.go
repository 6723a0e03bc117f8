package snap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ccsnap/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
	maxPage         = 1_000_000
)

// HostInfo describes the machine a snapshot was taken on.
type HostInfo struct {
	OSType    string
	OSVersion string
	Hostname  string
	Username  string
}

// CreateRequest carries the caller-supplied metadata for a new snapshot.
type CreateRequest struct {
	TriggerType model.TriggerType
	TriggeredBy string
	Notes       string
	Tags        []string
	Host        HostInfo
}

// TagRequest describes a tag to attach to an existing snapshot.
type TagRequest struct {
	Name        string
	Type        string
	Description string
	CreatedBy   string
}

// AnnotationRequest describes an annotation to attach to an existing snapshot.
type AnnotationRequest struct {
	Text      string
	Type      string
	CreatedBy string
}

// Comparison is the set of differences between two stored snapshots.
type Comparison struct {
	From    *model.Snapshot         `json:"from"`
	To      *model.Snapshot         `json:"to"`
	Changes []*model.SnapshotChange `json:"changes"`
}

// SnapService is the orchestration layer that composes scanning,
// deduplication, change detection and persistence.
type SnapService struct {
	database Database
	scanner  *PathScanner
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewSnapService creates a new SnapService with the provided dependencies.
func NewSnapService(database Database, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *SnapService {
	return &SnapService{
		database: database,
		scanner:  NewPathScanner(fsmgr, logger, clock, idgen),
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// CreateSnapshot resolves and scans every configured location and commits
// the result as one snapshot. Either the whole snapshot is stored, with its
// paths, changes, tags, annotations and content references, or nothing is.
//
// Per-path failures are recorded on the path and do not fail the call.
// Configuration problems are returned as *ConfigError before anything is scanned.
func (s *SnapService) CreateSnapshot(ctx context.Context, cfg ScanConfiguration, req CreateRequest) (*model.Snapshot, error) {
	trigger := req.TriggerType
	if trigger == "" {
		trigger = model.TriggerManual
	}
	if !trigger.Valid() {
		return nil, fmt.Errorf("invalid trigger type: %q", trigger)
	}

	resolved, err := ResolvePaths(cfg, nil)
	if err != nil {
		return nil, err
	}

	results, err := s.scanner.Scan(ctx, resolved, ScanOptions{
		SkipContent:    cfg.SkipContent,
		Parallelism:    cfg.Parallelism,
		PathTimeout:    cfg.PathTimeout,
		MaxContentSize: cfg.MaxContentSize,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	snapshot := &model.Snapshot{
		ID:             s.idgen.New(),
		SnapshotTime:   now,
		TriggerType:    trigger,
		TriggeredBy:    req.TriggeredBy,
		Notes:          req.Notes,
		OSType:         req.Host.OSType,
		OSVersion:      req.Host.OSVersion,
		Hostname:       req.Host.Hostname,
		Username:       req.Host.Username,
		TotalLocations: len(resolved),
	}
	for _, r := range results {
		snapshot.Paths = append(snapshot.Paths, r.Path)
		if r.Annotation != nil {
			snapshot.Annotations = append(snapshot.Annotations, r.Annotation)
		}
	}

	err = s.database.InTx(ctx, func(tx SnapshotWriter) error {
		for _, r := range results {
			if r.Content == nil {
				continue
			}
			ref, err := tx.Intern(ctx, r.Content)
			if err != nil {
				return fmt.Errorf("storing content for %s/%s: %w", r.Path.Category, r.Path.Name, err)
			}
			r.Path.ContentRef = ref
		}

		previous, err := tx.LatestSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("loading previous snapshot: %w", err)
		}
		if previous == nil {
			snapshot.IsBaseline = true
		} else {
			snapshot.Changes = DetectChanges(previous.Paths, snapshot.Paths)
			n := len(snapshot.Changes)
			snapshot.ChangedFromPrevious = &n
		}

		computeAggregates(snapshot)

		if err := tx.InsertSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}

		for _, name := range req.Tags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			tag := &model.Tag{
				ID:        s.idgen.New(),
				TagName:   name,
				CreatedAt: now,
				CreatedBy: req.TriggeredBy,
			}
			created, err := tx.InsertTag(ctx, snapshot.ID, tag)
			if err != nil {
				return fmt.Errorf("adding tag %q: %w", name, err)
			}
			if !created {
				s.logger.Debug("duplicate tag skipped", "snapshot", snapshot.ID, "tag", name)
				continue
			}
			snapshot.Tags = append(snapshot.Tags, tag)
		}

		for _, a := range snapshot.Annotations {
			if err := tx.InsertAnnotation(ctx, snapshot.ID, a); err != nil {
				return fmt.Errorf("adding annotation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	s.logger.Info("snapshot created",
		"id", snapshot.ID,
		"trigger", string(snapshot.TriggerType),
		"locations", snapshot.TotalLocations,
		"files", snapshot.FilesFound,
		"directories", snapshot.DirectoriesFound,
		"baseline", snapshot.IsBaseline,
		"changes", len(snapshot.Changes),
	)
	return snapshot, nil
}

func computeAggregates(snapshot *model.Snapshot) {
	snapshot.FilesFound = 0
	snapshot.DirectoriesFound = 0
	snapshot.TotalSizeBytes = 0
	for _, p := range snapshot.Paths {
		if !p.Exists {
			continue
		}
		switch p.Type {
		case model.PathTypeFile:
			snapshot.FilesFound++
			if p.SizeBytes != nil {
				snapshot.TotalSizeBytes += *p.SizeBytes
			}
		case model.PathTypeDirectory:
			snapshot.DirectoriesFound++
		}
	}
	snapshot.ContentHash = snapshotHash(snapshot.Paths)
}

// GetSnapshot returns the full snapshot aggregate.
func (s *SnapService) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	snapshot, err := s.database.GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return snapshot, nil
}

// ListSnapshots returns one page of snapshot summaries.
// Page defaults to 1, capped at 1,000,000, and PageSize to 20, capped at 500.
func (s *SnapService) ListSnapshots(ctx context.Context, query ListQuery) (*model.Page, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Page > maxPage {
		query.Page = maxPage
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}
	if query.SortBy == "" {
		query.SortBy = SortByTime
	}
	if query.SortBy != SortByTime && query.SortBy != SortBySize {
		return nil, fmt.Errorf("invalid sort field: %q", query.SortBy)
	}
	if query.TriggerType != "" && !query.TriggerType.Valid() {
		return nil, fmt.Errorf("invalid trigger type: %q", query.TriggerType)
	}

	page, err := s.database.ListSnapshots(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return page, nil
}

// DeleteSnapshot removes a snapshot and everything it owns, releasing one
// content reference for every path that captured content.
func (s *SnapService) DeleteSnapshot(ctx context.Context, id string) error {
	err := s.database.InTx(ctx, func(tx SnapshotWriter) error {
		snapshot, err := tx.FindSnapshot(ctx, id)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if snapshot == nil {
			return fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
		}

		for _, p := range snapshot.Paths {
			if p.ContentRef == "" {
				continue
			}
			if err := tx.Release(ctx, p.ContentRef); err != nil {
				return fmt.Errorf("releasing content %s: %w", p.ContentRef, err)
			}
		}

		return tx.DeleteSnapshot(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("snapshot deleted", "id", id)
	return nil
}

// AddTag attaches a tag to an existing snapshot. Returns ErrTagExists if the
// snapshot already has a tag with that name.
func (s *SnapService) AddTag(ctx context.Context, snapshotID string, req TagRequest) (*model.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	tag := &model.Tag{
		ID:          s.idgen.New(),
		TagName:     name,
		TagType:     req.Type,
		Description: req.Description,
		CreatedAt:   s.clock.Now().UTC(),
		CreatedBy:   req.CreatedBy,
	}

	err := s.database.InTx(ctx, func(tx SnapshotWriter) error {
		snapshot, err := tx.FindSnapshot(ctx, snapshotID)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if snapshot == nil {
			return fmt.Errorf("snapshot %s: %w", snapshotID, ErrNotFound)
		}

		created, err := tx.InsertTag(ctx, snapshotID, tag)
		if err != nil {
			return fmt.Errorf("adding tag: %w", err)
		}
		if !created {
			return fmt.Errorf("tag %q: %w", name, ErrTagExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag added", "snapshot", snapshotID, "tag", name)
	return tag, nil
}

// AddAnnotation attaches free text to an existing snapshot.
func (s *SnapService) AddAnnotation(ctx context.Context, snapshotID string, req AnnotationRequest) (*model.Annotation, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("annotation text is required")
	}

	annotation := &model.Annotation{
		ID:             s.idgen.New(),
		AnnotationText: req.Text,
		AnnotationType: req.Type,
		CreatedAt:      s.clock.Now().UTC(),
		CreatedBy:      req.CreatedBy,
	}

	err := s.database.InTx(ctx, func(tx SnapshotWriter) error {
		snapshot, err := tx.FindSnapshot(ctx, snapshotID)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if snapshot == nil {
			return fmt.Errorf("snapshot %s: %w", snapshotID, ErrNotFound)
		}
		if err := tx.InsertAnnotation(ctx, snapshotID, annotation); err != nil {
			return fmt.Errorf("adding annotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("annotation added", "snapshot", snapshotID)
	return annotation, nil
}

// CompareSnapshots diffs any two stored snapshots, treating from as the
// earlier state.
func (s *SnapService) CompareSnapshots(ctx context.Context, fromID, toID string) (*Comparison, error) {
	from, err := s.GetSnapshot(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.GetSnapshot(ctx, toID)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		From:    from,
		To:      to,
		Changes: DetectChanges(from.Paths, to.Paths),
	}, nil
}

// GetContent returns a captured file body by its ref.
func (s *SnapService) GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error) {
	if !IsContentRef(string(ref)) {
		return nil, fmt.Errorf("content %s: %w", ref, ErrNotFound)
	}
	entry, err := s.database.GetContent(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("content %s: %w", ref, ErrNotFound)
	}
	return entry, nil
}

// SweepContent removes content entries that nothing refers to any more.
func (s *SnapService) SweepContent(ctx context.Context) (int64, error) {
	n, err := s.database.SweepContent(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweeping content: %w", err)
	}
	s.logger.Info("content swept", "removed", n)
	return n, nil
}

// Watch takes a scheduled snapshot immediately and then once per interval
// until ctx is done. Failed runs are logged and retried on the next tick,
// except configuration errors which stop the loop. onSnapshot, if non-nil,
// is called after each successful run.
func (s *SnapService) Watch(ctx context.Context, cfg ScanConfiguration, req CreateRequest, interval time.Duration, onSnapshot func(*model.Snapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	req.TriggerType = model.TriggerScheduled

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot, err := s.CreateSnapshot(ctx, cfg, req)
		var cfgErr *ConfigError
		switch {
		case errors.As(err, &cfgErr):
			return err
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			s.logger.Error("scheduled snapshot failed", "error", err)
		case onSnapshot != nil:
			onSnapshot(snapshot)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
