package snap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ccsnap/internal/model"
)

const (
	// DesktopLogsName is the location whose scan also reports MCP log files.
	DesktopLogsName = "Claude Desktop Logs"

	mcpLogPattern      = "mcp*.log"
	maxListedLogFiles  = 10
	defaultParallelism = 4
)

// ScanOptions controls a single PathScanner run.
type ScanOptions struct {
	SkipContent    bool
	Parallelism    int
	PathTimeout    time.Duration // 0 disables the per-path timeout
	MaxContentSize int64         // 0 means unlimited
}

// ScanResult is the draft produced for one resolved location.
// Content holds the file body to be interned, or nil.
type ScanResult struct {
	Path       *model.SnapshotPath
	Content    []byte
	Annotation *model.Annotation
}

// PathScanner inspects resolved locations on the filesystem. Failures are
// recorded on the individual result and never abort the other locations.
type PathScanner struct {
	fsmgr  FilesystemManager
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewPathScanner creates a scanner backed by fsmgr.
func NewPathScanner(fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *PathScanner {
	return &PathScanner{fsmgr: fsmgr, logger: logger, clock: clock, idgen: idgen}
}

// Scan inspects every entry concurrently, bounded by opts.Parallelism.
// Results are returned in the same order as entries. The only error is
// cancellation of ctx.
func (s *PathScanner) Scan(ctx context.Context, entries []ResolvedPath, opts ScanOptions) ([]ScanResult, error) {
	limit := opts.Parallelism
	if limit <= 0 {
		limit = defaultParallelism
	}

	results := make([]ScanResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scanWithTimeout(gctx, entry, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning paths: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scanning paths: %w", err)
	}
	return results, nil
}

func (s *PathScanner) scanWithTimeout(ctx context.Context, entry ResolvedPath, opts ScanOptions) ScanResult {
	if opts.PathTimeout <= 0 {
		return s.scanOne(entry, opts)
	}

	tctx, cancel := context.WithTimeout(ctx, opts.PathTimeout)
	defer cancel()

	// Filesystem calls cannot be interrupted, so a hung path is abandoned
	// rather than cancelled. The buffered channel lets it finish and exit.
	done := make(chan ScanResult, 1)
	go func() { done <- s.scanOne(entry, opts) }()

	select {
	case r := <-done:
		return r
	case <-tctx.Done():
		r := ScanResult{Path: draftPath(entry)}
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			r.Path.ErrorMessage = fmt.Sprintf("scan timed out after %s", opts.PathTimeout)
		} else {
			r.Path.ErrorMessage = "scan cancelled"
		}
		s.logger.Warn("path scan abandoned", "path", entry.Path, "reason", r.Path.ErrorMessage)
		return r
	}
}

// scanOne inspects a single location. A panic is converted into an error
// message on the result.
func (s *PathScanner) scanOne(entry ResolvedPath, opts ScanOptions) (res ScanResult) {
	res = ScanResult{Path: draftPath(entry)}
	defer func() {
		if r := recover(); r != nil {
			res = ScanResult{Path: draftPath(entry)}
			res.Path.ErrorMessage = fmt.Sprintf("unexpected failure: %v", r)
			s.logger.Error("path scan panicked", "path", entry.Path, "panic", r)
		}
	}()

	p := res.Path
	info, err := s.fsmgr.Stat(entry.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res
		}
		p.ErrorMessage = err.Error()
		s.logger.Warn("stat failed", "path", entry.Path, "error", err)
		return res
	}

	p.Exists = true
	times := s.fsmgr.Times(info)
	modified := times.Modified.UTC()
	p.ModifiedTime = &modified
	p.AccessedTime = utcPtr(times.Accessed)
	p.CreatedTime = utcPtr(times.Created)

	if info.IsDir() {
		p.Type = model.PathTypeDirectory
		count, err := s.fsmgr.CountEntries(entry.Path)
		if err != nil {
			p.ErrorMessage = err.Error()
		} else {
			p.ItemCount = &count
		}
		if entry.Name == DesktopLogsName {
			res.Annotation = s.mcpLogAnnotation(entry.Path)
		}
		return res
	}

	p.Type = model.PathTypeFile
	size := info.Size()
	p.SizeBytes = &size

	if opts.SkipContent {
		return res
	}
	if opts.MaxContentSize > 0 && size > opts.MaxContentSize {
		p.ErrorMessage = fmt.Sprintf("content not captured: %d bytes exceeds limit of %d", size, opts.MaxContentSize)
		return res
	}

	// An unreadable file is recorded like one that could not be stat'ed.
	content, err := s.fsmgr.ReadFile(entry.Path)
	if err != nil {
		res.Path = draftPath(entry)
		res.Path.ErrorMessage = err.Error()
		s.logger.Warn("read failed", "path", entry.Path, "error", err)
		return res
	}
	res.Content = content
	return res
}

// mcpLogAnnotation lists the MCP server logs found in the desktop log directory.
func (s *PathScanner) mcpLogAnnotation(dir string) *model.Annotation {
	matches, err := s.fsmgr.Glob(filepath.Join(dir, mcpLogPattern))
	if err != nil {
		s.logger.Warn("listing MCP logs failed", "path", dir, "error", err)
		return nil
	}

	names := make([]string, 0, min(len(matches), maxListedLogFiles))
	for _, m := range matches {
		if len(names) == maxListedLogFiles {
			break
		}
		names = append(names, filepath.Base(m))
	}

	text := fmt.Sprintf("Found %d MCP log file(s)", len(matches))
	if len(names) > 0 {
		text += ": " + strings.Join(names, ", ")
	}
	if extra := len(matches) - len(names); extra > 0 {
		text += fmt.Sprintf(" (and %d more)", extra)
	}

	return &model.Annotation{
		ID:             s.idgen.New(),
		AnnotationText: text,
		AnnotationType: "scanner-generated",
		CreatedAt:      s.clock.Now().UTC(),
		CreatedBy:      "scanner",
	}
}

func draftPath(entry ResolvedPath) *model.SnapshotPath {
	return &model.SnapshotPath{
		Category:     entry.Category,
		Name:         entry.Name,
		PathTemplate: entry.Template,
		ResolvedPath: entry.Path,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
