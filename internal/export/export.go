// Package export renders a stored snapshot as a portable document.
package export

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"ccsnap/internal/model"
)

// DocumentVersion identifies the layout of JSON and YAML exports.
const DocumentVersion = 1

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json, yaml (or yml) and csv, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, yaml or csv)", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string { return string(f) }

// ContentSource resolves content refs to captured file bodies.
type ContentSource interface {
	GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error)
}

// Options controls an export.
type Options struct {
	Format         Format
	IncludeContent bool
	ExportedAt     time.Time
}

// Content is one captured file body embedded in an export. Data is plain
// text when Encoding is "utf-8" and standard base64 otherwise.
type Content struct {
	Ref       model.ContentRef `json:"ref" yaml:"ref"`
	SizeBytes int64            `json:"size_bytes" yaml:"size_bytes"`
	Encoding  string           `json:"encoding" yaml:"encoding"`
	Data      string           `json:"data" yaml:"data"`
}

// Document is the JSON and YAML export layout.
type Document struct {
	Version    int             `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Snapshot   *model.Snapshot `json:"snapshot" yaml:"snapshot"`
	Contents   []Content       `json:"contents,omitempty" yaml:"contents,omitempty"`
}

// Write renders snapshot to w. src is only consulted when content is included.
func Write(ctx context.Context, w io.Writer, snapshot *model.Snapshot, src ContentSource, opts Options) error {
	var contents map[model.ContentRef]Content
	if opts.IncludeContent {
		var err error
		if contents, err = collectContent(ctx, snapshot, src); err != nil {
			return err
		}
	}

	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newDocument(snapshot, contents, opts)); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(snapshot, contents, opts)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
	case FormatCSV:
		return writeCSV(w, snapshot, contents, opts.IncludeContent)
	default:
		return fmt.Errorf("unknown export format %q", opts.Format)
	}
	return nil
}

func newDocument(snapshot *model.Snapshot, contents map[model.ContentRef]Content, opts Options) *Document {
	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: opts.ExportedAt.UTC(),
		Snapshot:   snapshot,
	}
	seen := make(map[model.ContentRef]bool, len(contents))
	for _, p := range snapshot.Paths {
		if c, ok := contents[p.ContentRef]; ok && !seen[p.ContentRef] {
			seen[p.ContentRef] = true
			doc.Contents = append(doc.Contents, c)
		}
	}
	return doc
}

// collectContent loads each distinct ref once.
func collectContent(ctx context.Context, snapshot *model.Snapshot, src ContentSource) (map[model.ContentRef]Content, error) {
	out := make(map[model.ContentRef]Content)
	for _, p := range snapshot.Paths {
		if p.ContentRef == "" {
			continue
		}
		if _, ok := out[p.ContentRef]; ok {
			continue
		}
		entry, err := src.GetContent(ctx, p.ContentRef)
		if err != nil {
			return nil, fmt.Errorf("loading content for %s/%s: %w", p.Category, p.Name, err)
		}
		out[p.ContentRef] = encodeContent(entry)
	}
	return out, nil
}

func encodeContent(entry *model.ContentEntry) Content {
	c := Content{Ref: entry.ContentHash, SizeBytes: entry.SizeBytes}
	if utf8.Valid(entry.Content) {
		c.Encoding = "utf-8"
		c.Data = string(entry.Content)
	} else {
		c.Encoding = "base64"
		c.Data = base64.StdEncoding.EncodeToString(entry.Content)
	}
	return c
}

var csvHeader = []string{
	"snapshot_id", "snapshot_time", "category", "name", "path_template", "resolved_path",
	"exists", "type", "size_bytes", "item_count", "modified_time", "content_ref",
	"change_type", "error_message",
}

// writeCSV writes one row per path. The change column holds the change
// recorded against the previous snapshot, if any.
func writeCSV(w io.Writer, snapshot *model.Snapshot, contents map[model.ContentRef]Content, includeContent bool) error {
	changes := make(map[model.PathKey]model.ChangeType, len(snapshot.Changes))
	for _, c := range snapshot.Changes {
		changes[model.PathKey{Category: c.Category, Name: c.Name}] = c.ChangeType
	}

	cw := csv.NewWriter(w)
	header := csvHeader
	if includeContent {
		header = append(append([]string{}, csvHeader...), "content")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	ts := snapshot.SnapshotTime.UTC().Format(time.RFC3339)
	for _, p := range snapshot.Paths {
		row := []string{
			snapshot.ID, ts, p.Category, p.Name, p.PathTemplate, p.ResolvedPath,
			strconv.FormatBool(p.Exists), string(p.Type), formatInt64(p.SizeBytes), formatInt(p.ItemCount),
			formatTime(p.ModifiedTime), string(p.ContentRef), string(changes[p.Key()]), p.ErrorMessage,
		}
		if includeContent {
			row = append(row, contents[p.ContentRef].Data)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
