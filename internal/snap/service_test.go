package snap_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"testing"
	"time"

	"ccsnap/internal/database"
	"ccsnap/internal/model"
	"ccsnap/internal/snap"
	"ccsnap/internal/testutil"
)

const (
	settingsPath = "/home/u/.claude/settings.json"
	memoryPath   = "/home/u/.claude/CLAUDE.md"
	commandsPath = "/home/u/.claude/commands"
	logsPath     = "/home/u/logs"
)

type fixture struct {
	svc   *snap.SnapService
	db    *database.SQLiteDatabase
	fsmgr *testutil.MockFilesystemManager
	clock *testutil.StubClock
	idgen *testutil.StubIDGenerator
	cfg   snap.ScanConfiguration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.FixedClock()
	db := testutil.NewTestDatabase(t, clock)
	fsmgr := testutil.NewMockFilesystemManager()

	fsmgr.AddFile(settingsPath, []byte(`{"theme":"dark"}`))
	fsmgr.AddFile(memoryPath, []byte("# memory"))
	fsmgr.AddDirectory(commandsPath)
	fsmgr.AddFile(commandsPath+"/review.md", []byte("review"))
	fsmgr.AddDirectory(logsPath)
	fsmgr.AddFile(logsPath+"/mcp-server-a.log", []byte("log"))

	cfg := snap.ScanConfiguration{
		Templates: []model.PathTemplate{
			tmpl("settings", "User Settings", "%HOME%/.claude/settings.json"),
			tmpl("memory", "User Memory", "%HOME%/.claude/CLAUDE.md"),
			tmpl("mcp", "Project MCP Config", "%HOME%/project/.mcp.json"),
			tmpl("commands", "User Commands", "%HOME%/.claude/commands"),
			tmpl("logs", snap.DesktopLogsName, "%LOGS%"),
		},
		Placeholders: map[string]string{"HOME": "/home/u", "LOGS": logsPath},
	}

	idgen := testutil.NewStubIDGenerator()
	svc := snap.NewSnapService(db, fsmgr, snap.NewNopLogger(), clock, idgen)
	return &fixture{svc: svc, db: db, fsmgr: fsmgr, clock: clock, idgen: idgen, cfg: cfg}
}

func (f *fixture) create(t *testing.T, req snap.CreateRequest) *model.Snapshot {
	t.Helper()
	s, err := f.svc.CreateSnapshot(context.Background(), f.cfg, req)
	if err != nil {
		t.Fatalf("CreateSnapshot() error = %v", err)
	}
	f.clock.Advance(time.Minute)
	return s
}

func (f *fixture) refCount(t *testing.T, content string) int64 {
	t.Helper()
	entry, err := f.db.GetContent(context.Background(), model.ContentRef(testutil.SHA256Hex([]byte(content))))
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if entry == nil {
		return -1
	}
	return entry.ReferenceCount
}

func pathByName(s *model.Snapshot, name string) *model.SnapshotPath {
	for _, p := range s.Paths {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func TestSnapService_CreateSnapshot_Baseline(t *testing.T) {
	f := newFixture(t)

	created := f.create(t, snap.CreateRequest{
		TriggeredBy: "alice",
		Notes:       "first",
		Tags:        []string{"initial", " ", "initial"},
		Host:        snap.HostInfo{OSType: "linux", Hostname: "box", Username: "alice"},
	})

	if !created.IsBaseline || created.ChangedFromPrevious != nil || len(created.Changes) != 0 {
		t.Errorf("baseline = %v, changed = %v, changes = %d", created.IsBaseline, created.ChangedFromPrevious, len(created.Changes))
	}
	if created.TriggerType != model.TriggerManual {
		t.Errorf("TriggerType = %q, want manual", created.TriggerType)
	}
	if created.TotalLocations != 5 || created.FilesFound != 2 || created.DirectoriesFound != 2 {
		t.Errorf("counts = %d/%d/%d, want 5/2/2", created.TotalLocations, created.FilesFound, created.DirectoriesFound)
	}
	if want := int64(len(`{"theme":"dark"}`) + len("# memory")); created.TotalSizeBytes != want {
		t.Errorf("TotalSizeBytes = %d, want %d", created.TotalSizeBytes, want)
	}
	if created.ContentHash == "" {
		t.Error("ContentHash is empty")
	}
	if got := created.TagNames(); len(got) != 1 || got[0] != "initial" {
		t.Errorf("Tags = %v, want [initial]", got)
	}

	stored, err := f.svc.GetSnapshot(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(stored.Paths) != 5 {
		t.Fatalf("stored paths = %d, want 5", len(stored.Paths))
	}
	if stored.Hostname != "box" || stored.Notes != "first" || stored.TriggeredBy != "alice" {
		t.Errorf("stored metadata = %+v", stored)
	}

	settings := pathByName(stored, "User Settings")
	if settings.ContentRef != model.ContentRef(testutil.SHA256Hex([]byte(`{"theme":"dark"}`))) {
		t.Errorf("settings ContentRef = %s", settings.ContentRef)
	}
	if mcp := pathByName(stored, "Project MCP Config"); mcp.Exists || mcp.ContentRef != "" {
		t.Errorf("mcp = %+v, want missing", mcp)
	}
	if commands := pathByName(stored, "User Commands"); commands.ItemCount == nil || *commands.ItemCount != 1 {
		t.Errorf("commands ItemCount = %v, want 1", commands.ItemCount)
	}

	if len(stored.Annotations) != 1 || stored.Annotations[0].AnnotationText != "Found 1 MCP log file(s): mcp-server-a.log" {
		t.Errorf("Annotations = %+v", stored.Annotations)
	}
}

func TestSnapService_CreateSnapshot_FirstScan(t *testing.T) {
	tests := []struct {
		name      string
		templates []model.PathTemplate
	}{
		{
			name: "all locations missing",
			templates: []model.PathTemplate{
				tmpl("settings", "User Settings", "/nowhere/settings.json"),
				tmpl("memory", "User Memory", "/nowhere/CLAUDE.md"),
				tmpl("mcp", "Project MCP Config", "/nowhere/.mcp.json"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cfg.Templates = tt.templates

			s := f.create(t, snap.CreateRequest{})
			if !s.IsBaseline || s.ChangedFromPrevious != nil {
				t.Errorf("baseline = %v, changed = %v, want a baseline", s.IsBaseline, s.ChangedFromPrevious)
			}
			if s.TotalLocations != len(tt.templates) || s.FilesFound != 0 || s.DirectoriesFound != 0 || s.TotalSizeBytes != 0 {
				t.Errorf("counts = %d/%d/%d size %d, want %d/0/0 size 0",
					s.TotalLocations, s.FilesFound, s.DirectoriesFound, s.TotalSizeBytes, len(tt.templates))
			}

			stored, err := f.svc.GetSnapshot(context.Background(), s.ID)
			if err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if len(stored.Paths) != len(tt.templates) {
				t.Fatalf("stored paths = %d, want %d", len(stored.Paths), len(tt.templates))
			}
			for _, p := range stored.Paths {
				if p.Exists || p.ErrorMessage != "" || p.ContentRef != "" {
					t.Errorf("%s = exists %v err %q ref %q, want missing without error", p.Name, p.Exists, p.ErrorMessage, p.ContentRef)
				}
			}
		})
	}
}

func TestSnapService_CreateSnapshot_UnreadableFile(t *testing.T) {
	f := newFixture(t)
	names := []string{"a", "b", "c", "d", "e"}
	f.cfg.Templates = nil
	for _, n := range names {
		path := "/home/u/.claude/" + n + ".json"
		f.fsmgr.AddFile(path, []byte("content "+n))
		f.cfg.Templates = append(f.cfg.Templates, tmpl("settings", n, path))
	}

	first := f.create(t, snap.CreateRequest{})
	if first.FilesFound != 5 {
		t.Fatalf("first FilesFound = %d, want 5", first.FilesFound)
	}

	f.fsmgr.SetReadError("/home/u/.claude/c.json", fs.ErrPermission)
	second := f.create(t, snap.CreateRequest{})

	stored, err := f.svc.GetSnapshot(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(stored.Paths) != 5 {
		t.Fatalf("stored paths = %d, want 5", len(stored.Paths))
	}
	if stored.FilesFound != 4 {
		t.Errorf("FilesFound = %d, want 4", stored.FilesFound)
	}
	if want := int64(4 * len("content a")); stored.TotalSizeBytes != want {
		t.Errorf("TotalSizeBytes = %d, want %d", stored.TotalSizeBytes, want)
	}

	var failed int
	for _, p := range stored.Paths {
		if p.Name != "c" {
			if !p.Exists || p.ContentRef == "" {
				t.Errorf("%s = exists %v ref %q, want captured", p.Name, p.Exists, p.ContentRef)
			}
			continue
		}
		failed++
		if p.Exists || p.Type != "" || p.SizeBytes != nil || p.ContentRef != "" || p.ErrorMessage == "" {
			t.Errorf("c = %+v, want exists=false with an error message", p)
		}
	}
	if failed != 1 {
		t.Errorf("unreadable paths = %d, want 1", failed)
	}

	if len(stored.Changes) != 1 || stored.Changes[0].Name != "c" || stored.Changes[0].ChangeType != model.ChangeModified {
		t.Fatalf("Changes = %+v, want c modified", stored.Changes)
	}
	if stored.Changes[0].PreviousContentRef == "" || stored.Changes[0].NewContentRef != "" {
		t.Errorf("change refs = %q -> %q, want captured -> none", stored.Changes[0].PreviousContentRef, stored.Changes[0].NewContentRef)
	}
	if got := f.refCount(t, "content c"); got != 1 {
		t.Errorf("c reference count = %d, want 1", got)
	}
}

func TestSnapService_CreateSnapshot_Dedup(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, snap.CreateRequest{})
	second := f.create(t, snap.CreateRequest{})

	if got := f.refCount(t, `{"theme":"dark"}`); got != 2 {
		t.Errorf("settings reference count = %d, want 2", got)
	}
	if pathByName(first, "User Settings").ContentRef != pathByName(second, "User Settings").ContentRef {
		t.Error("identical content produced different refs")
	}

	// Idempotent re-scan.
	if second.IsBaseline {
		t.Error("second snapshot should not be a baseline")
	}
	if second.ChangedFromPrevious == nil || *second.ChangedFromPrevious != 0 {
		t.Errorf("ChangedFromPrevious = %v, want 0", second.ChangedFromPrevious)
	}
	if len(second.Changes) != 0 {
		t.Errorf("Changes = %d, want 0", len(second.Changes))
	}
	if first.ContentHash != second.ContentHash {
		t.Errorf("ContentHash changed across identical scans: %s -> %s", first.ContentHash, second.ContentHash)
	}
}

func TestSnapService_CreateSnapshot_DetectsChanges(t *testing.T) {
	f := newFixture(t)
	f.fsmgr.AddFile(settingsPath, []byte("hello"))
	f.create(t, snap.CreateRequest{})

	f.fsmgr.AddFile(settingsPath, []byte("world"))
	f.fsmgr.Remove(memoryPath)
	f.fsmgr.AddFile("/home/u/project/.mcp.json", []byte("{}"))
	f.cfg.Templates = append(f.cfg.Templates, tmpl("agents", "User Agents", "%HOME%/.claude/agents"))

	second := f.create(t, snap.CreateRequest{})

	want := map[string]model.ChangeType{
		"User Settings":      model.ChangeModified,
		"User Memory":        model.ChangeModified,
		"Project MCP Config": model.ChangeModified,
		"User Agents":        model.ChangeAdded,
	}
	if second.ChangedFromPrevious == nil || *second.ChangedFromPrevious != len(want) {
		t.Errorf("ChangedFromPrevious = %v, want %d", second.ChangedFromPrevious, len(want))
	}

	stored, err := f.svc.GetSnapshot(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if len(stored.Changes) != len(want) {
		t.Fatalf("stored changes = %d, want %d", len(stored.Changes), len(want))
	}
	for _, c := range stored.Changes {
		if want[c.Name] != c.ChangeType {
			t.Errorf("%s = %s, want %s", c.Name, c.ChangeType, want[c.Name])
		}
		if c.Name != "User Settings" {
			continue
		}

		prev, err := f.svc.GetContent(context.Background(), c.PreviousContentRef)
		if err != nil {
			t.Fatalf("GetContent(previous) error = %v", err)
		}
		next, err := f.svc.GetContent(context.Background(), c.NewContentRef)
		if err != nil {
			t.Fatalf("GetContent(new) error = %v", err)
		}
		if string(prev.Content) != "hello" || string(next.Content) != "world" {
			t.Errorf("content change = %q -> %q, want hello -> world", prev.Content, next.Content)
		}
	}
}

func TestSnapService_CreateSnapshot_RemovedLocation(t *testing.T) {
	f := newFixture(t)
	f.create(t, snap.CreateRequest{})

	f.cfg.Templates = f.cfg.Templates[1:]
	second := f.create(t, snap.CreateRequest{})

	if len(second.Changes) != 1 {
		t.Fatalf("Changes = %d, want 1", len(second.Changes))
	}
	c := second.Changes[0]
	if c.ChangeType != model.ChangeRemoved || c.Name != "User Settings" || c.NewContentRef != "" || c.PreviousContentRef == "" {
		t.Errorf("change = %+v", c)
	}
}

func TestSnapService_CreateSnapshot_Errors(t *testing.T) {
	t.Run("invalid trigger", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateSnapshot(context.Background(), f.cfg, snap.CreateRequest{TriggerType: "cron"})
		if err == nil {
			t.Error("CreateSnapshot() expected error for invalid trigger")
		}
	})

	t.Run("configuration error stores nothing", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Templates = append(f.cfg.Templates, tmpl("settings", "Project Settings", "%UNSET_FOR_TEST_CCSNAP%/x"))

		_, err := f.svc.CreateSnapshot(context.Background(), f.cfg, snap.CreateRequest{})
		var cfgErr *snap.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("CreateSnapshot() error = %v, want *ConfigError", err)
		}
		assertEmpty(t, f)
	})

	t.Run("cancelled context stores nothing", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := f.svc.CreateSnapshot(ctx, f.cfg, snap.CreateRequest{}); err == nil {
			t.Fatal("CreateSnapshot() expected error for cancelled context")
		}
		assertEmpty(t, f)
	})
}

// failingWriter fails one writer operation after the content has been interned.
type failingWriter struct {
	snap.SnapshotWriter
	failOn string
}

func (w failingWriter) InsertSnapshot(ctx context.Context, s *model.Snapshot) error {
	if w.failOn == "snapshot" {
		return errors.New("disk full")
	}
	return w.SnapshotWriter.InsertSnapshot(ctx, s)
}

func (w failingWriter) InsertAnnotation(ctx context.Context, id string, a *model.Annotation) error {
	if w.failOn == "annotation" {
		return errors.New("disk full")
	}
	return w.SnapshotWriter.InsertAnnotation(ctx, id, a)
}

type failingDB struct {
	snap.Database
	failOn string
}

func (d failingDB) InTx(ctx context.Context, fn func(tx snap.SnapshotWriter) error) error {
	return d.Database.InTx(ctx, func(tx snap.SnapshotWriter) error {
		return fn(failingWriter{SnapshotWriter: tx, failOn: d.failOn})
	})
}

func TestSnapService_CreateSnapshot_Atomic(t *testing.T) {
	for _, failOn := range []string{"snapshot", "annotation"} {
		t.Run(failOn, func(t *testing.T) {
			f := newFixture(t)
			baseline := f.create(t, snap.CreateRequest{})

			f.fsmgr.AddFile(settingsPath, []byte("changed"))
			svc := snap.NewSnapService(failingDB{Database: f.db, failOn: failOn}, f.fsmgr, snap.NewNopLogger(), f.clock, f.idgen)

			if _, err := svc.CreateSnapshot(context.Background(), f.cfg, snap.CreateRequest{}); err == nil {
				t.Fatal("CreateSnapshot() expected error")
			}

			page, err := f.svc.ListSnapshots(context.Background(), snap.ListQuery{})
			if err != nil {
				t.Fatalf("ListSnapshots() error = %v", err)
			}
			if page.Total != 1 || page.Items[0].ID != baseline.ID {
				t.Errorf("snapshots after failure = %d, want only the baseline", page.Total)
			}
			if got := f.refCount(t, "changed"); got != -1 {
				t.Errorf("new content survived rollback with count %d", got)
			}
			if got := f.refCount(t, "# memory"); got != 1 {
				t.Errorf("existing content count = %d, want 1", got)
			}
		})
	}
}

func assertEmpty(t *testing.T, f *fixture) {
	t.Helper()
	page, err := f.svc.ListSnapshots(context.Background(), snap.ListQuery{})
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if page.Total != 0 {
		t.Errorf("snapshots = %d, want 0", page.Total)
	}
	if got := f.refCount(t, `{"theme":"dark"}`); got != -1 {
		t.Errorf("content stored with count %d, want none", got)
	}
}

func TestSnapService_DeleteSnapshot(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, snap.CreateRequest{})
	second := f.create(t, snap.CreateRequest{})

	if err := f.svc.DeleteSnapshot(context.Background(), first.ID); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if got := f.refCount(t, `{"theme":"dark"}`); got != 1 {
		t.Errorf("reference count after one delete = %d, want 1", got)
	}

	if _, err := f.svc.GetSnapshot(context.Background(), first.ID); !errors.Is(err, snap.ErrNotFound) {
		t.Errorf("GetSnapshot(deleted) error = %v, want ErrNotFound", err)
	}

	if err := f.svc.DeleteSnapshot(context.Background(), second.ID); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if got := f.refCount(t, `{"theme":"dark"}`); got != 0 {
		t.Errorf("reference count after both deletes = %d, want 0", got)
	}

	removed, err := f.svc.SweepContent(context.Background())
	if err != nil {
		t.Fatalf("SweepContent() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("SweepContent() = %d, want 2", removed)
	}
	if got := f.refCount(t, `{"theme":"dark"}`); got != -1 {
		t.Errorf("content survived sweep with count %d", got)
	}

	if err := f.svc.DeleteSnapshot(context.Background(), "nope"); !errors.Is(err, snap.ErrNotFound) {
		t.Errorf("DeleteSnapshot(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSnapService_Tags(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, snap.CreateRequest{})
	ctx := context.Background()

	tag, err := f.svc.AddTag(ctx, s.ID, snap.TagRequest{Name: " release ", Type: "milestone", CreatedBy: "alice"})
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if tag.TagName != "release" || tag.TagType != "milestone" {
		t.Errorf("AddTag() = %+v", tag)
	}

	if _, err := f.svc.AddTag(ctx, s.ID, snap.TagRequest{Name: "release"}); !errors.Is(err, snap.ErrTagExists) {
		t.Errorf("duplicate AddTag() error = %v, want ErrTagExists", err)
	}
	if _, err := f.svc.AddTag(ctx, s.ID, snap.TagRequest{Name: ""}); err == nil {
		t.Error("AddTag() expected error for empty name")
	}
	if _, err := f.svc.AddTag(ctx, "nope", snap.TagRequest{Name: "x"}); !errors.Is(err, snap.ErrNotFound) {
		t.Errorf("AddTag(missing) error = %v, want ErrNotFound", err)
	}

	stored, err := f.svc.GetSnapshot(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if names := stored.TagNames(); len(names) != 1 || names[0] != "release" {
		t.Errorf("stored tags = %v, want [release]", names)
	}
}

func TestSnapService_Annotations(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, snap.CreateRequest{})
	ctx := context.Background()

	if _, err := f.svc.AddAnnotation(ctx, s.ID, snap.AnnotationRequest{Text: "switched to sonnet", CreatedBy: "alice"}); err != nil {
		t.Fatalf("AddAnnotation() error = %v", err)
	}
	if _, err := f.svc.AddAnnotation(ctx, s.ID, snap.AnnotationRequest{Text: "  "}); err == nil {
		t.Error("AddAnnotation() expected error for blank text")
	}
	if _, err := f.svc.AddAnnotation(ctx, "nope", snap.AnnotationRequest{Text: "x"}); !errors.Is(err, snap.ErrNotFound) {
		t.Errorf("AddAnnotation(missing) error = %v, want ErrNotFound", err)
	}

	stored, err := f.svc.GetSnapshot(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	// One from the scanner, one from the user.
	if len(stored.Annotations) != 2 {
		t.Errorf("annotations = %d, want 2", len(stored.Annotations))
	}
}

func TestSnapService_ListSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 3 {
		f.create(t, snap.CreateRequest{Notes: fmt.Sprintf("run %d", i), Tags: []string{fmt.Sprintf("t%d", i%2)}})
	}

	tests := []struct {
		name      string
		query     snap.ListQuery
		wantTotal int64
		wantItems int
		wantErr   bool
	}{
		{name: "defaults", query: snap.ListQuery{}, wantTotal: 3, wantItems: 3},
		{name: "paged", query: snap.ListQuery{PageSize: 2, Page: 2}, wantTotal: 3, wantItems: 1},
		{name: "by tag", query: snap.ListQuery{Tags: []string{"t0"}}, wantTotal: 2, wantItems: 2},
		{name: "by search", query: snap.ListQuery{Search: "run 1"}, wantTotal: 1, wantItems: 1},
		{name: "by trigger", query: snap.ListQuery{TriggerType: model.TriggerAPI}, wantTotal: 0, wantItems: 0},
		{name: "invalid sort", query: snap.ListQuery{SortBy: "name"}, wantErr: true},
		{name: "invalid trigger", query: snap.ListQuery{TriggerType: "cron"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListSnapshots(ctx, tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListSnapshots() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if page.Total != tt.wantTotal || len(page.Items) != tt.wantItems {
				t.Errorf("ListSnapshots() total = %d items = %d, want %d/%d", page.Total, len(page.Items), tt.wantTotal, tt.wantItems)
			}
		})
	}

	t.Run("clamps page size", func(t *testing.T) {
		page, err := f.svc.ListSnapshots(ctx, snap.ListQuery{PageSize: 10000, Page: -3})
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if page.PageSize != 500 || page.Page != 1 {
			t.Errorf("page = %d size = %d, want 1/500", page.Page, page.PageSize)
		}
	})

	t.Run("clamps huge page", func(t *testing.T) {
		page, err := f.svc.ListSnapshots(ctx, snap.ListQuery{Page: math.MaxInt, PageSize: 500})
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if page.Page != 1_000_000 {
			t.Errorf("page = %d, want 1000000", page.Page)
		}
		if len(page.Items) != 0 || page.Total != 3 || page.HasNext {
			t.Errorf("items = %d total = %d hasNext = %v, want an empty last page", len(page.Items), page.Total, page.HasNext)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		page, err := f.svc.ListSnapshots(ctx, snap.ListQuery{})
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if page.Items[0].Notes != "run 2" {
			t.Errorf("first item = %q, want run 2", page.Items[0].Notes)
		}
	})
}

func TestSnapService_CompareSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, snap.CreateRequest{})
	f.fsmgr.AddFile(settingsPath, []byte("v2"))
	f.create(t, snap.CreateRequest{})
	f.fsmgr.AddFile(memoryPath, []byte("v3"))
	c := f.create(t, snap.CreateRequest{})

	cmp, err := f.svc.CompareSnapshots(ctx, a.ID, c.ID)
	if err != nil {
		t.Fatalf("CompareSnapshots() error = %v", err)
	}
	if len(cmp.Changes) != 2 {
		t.Fatalf("Changes = %d, want 2", len(cmp.Changes))
	}
	if cmp.Changes[0].Name != "User Memory" || cmp.Changes[1].Name != "User Settings" {
		t.Errorf("Changes = %s, %s", cmp.Changes[0].Name, cmp.Changes[1].Name)
	}

	if _, err := f.svc.CompareSnapshots(ctx, a.ID, "nope"); !errors.Is(err, snap.ErrNotFound) {
		t.Errorf("CompareSnapshots(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSnapService_GetContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, snap.CreateRequest{})

	entry, err := f.svc.GetContent(ctx, model.ContentRef(testutil.SHA256Hex([]byte("# memory"))))
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if string(entry.Content) != "# memory" || entry.SizeBytes != 8 {
		t.Errorf("GetContent() = %q (%d bytes)", entry.Content, entry.SizeBytes)
	}

	for _, ref := range []model.ContentRef{"not-a-hash", model.ContentRef(testutil.SHA256Hex([]byte("never stored")))} {
		if _, err := f.svc.GetContent(ctx, ref); !errors.Is(err, snap.ErrNotFound) {
			t.Errorf("GetContent(%s) error = %v, want ErrNotFound", ref, err)
		}
	}
}

func TestSnapService_SkipContent(t *testing.T) {
	f := newFixture(t)
	f.cfg.SkipContent = true

	s := f.create(t, snap.CreateRequest{})
	for _, p := range s.Paths {
		if p.ContentRef != "" {
			t.Errorf("%s ContentRef = %s, want none", p.Name, p.ContentRef)
		}
	}
	if got := f.refCount(t, `{"theme":"dark"}`); got != -1 {
		t.Errorf("content stored with count %d, want none", got)
	}
}

func TestSnapService_Watch(t *testing.T) {
	t.Run("runs until cancelled", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var got []*model.Snapshot
		err := f.svc.Watch(ctx, f.cfg, snap.CreateRequest{TriggeredBy: "watch"}, 10*time.Millisecond, func(s *model.Snapshot) {
			f.clock.Advance(time.Minute)
			got = append(got, s)
			if len(got) == 2 {
				cancel()
			}
		})
		if err != nil {
			t.Fatalf("Watch() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("snapshots = %d, want 2", len(got))
		}
		for _, s := range got {
			if s.TriggerType != model.TriggerScheduled {
				t.Errorf("TriggerType = %q, want scheduled", s.TriggerType)
			}
		}
		if !got[0].IsBaseline || got[1].IsBaseline {
			t.Error("only the first scheduled snapshot should be a baseline")
		}
	})

	t.Run("stops on configuration error", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Templates = append(f.cfg.Templates, tmpl("x", "y", "%UNSET_FOR_TEST_CCSNAP%"))

		err := f.svc.Watch(context.Background(), f.cfg, snap.CreateRequest{}, time.Millisecond, nil)
		var cfgErr *snap.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Watch() error = %v, want *ConfigError", err)
		}
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		f := newFixture(t)
		if err := f.svc.Watch(context.Background(), f.cfg, snap.CreateRequest{}, 0, nil); err == nil {
			t.Error("Watch() expected error for zero interval")
		}
	})
}
