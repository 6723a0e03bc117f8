package model

import "time"

// TriggerType records what started a scan.
type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerAPI       TriggerType = "api"
	TriggerScheduled TriggerType = "scheduled"
)

// Valid reports whether t is one of the known trigger types.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerManual, TriggerAPI, TriggerScheduled:
		return true
	}
	return false
}

// PathType is the kind of filesystem object found at a scanned location.
// The zero value means the location did not exist.
type PathType string

const (
	PathTypeFile      PathType = "file"
	PathTypeDirectory PathType = "directory"
)

// ChangeType classifies a difference between two consecutive snapshots.
// "Unchanged" is never stored; it is implied by the absence of a record.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// ContentRef is the SHA-256 hex digest of a captured file body.
// The empty ref means no content was captured.
type ContentRef string

// PathTemplate is one configured location before placeholder resolution.
type PathTemplate struct {
	Category string
	Name     string
	Template string // may contain %VAR% placeholders
	Enabled  bool
}

// Snapshot is one complete scan of all configured locations.
type Snapshot struct {
	ID                  string      `json:"id" yaml:"id"`
	SnapshotTime        time.Time   `json:"snapshot_time" yaml:"snapshot_time"`
	ContentHash         string      `json:"content_hash" yaml:"content_hash"`
	TriggerType         TriggerType `json:"trigger_type" yaml:"trigger_type"`
	TriggeredBy         string      `json:"triggered_by" yaml:"triggered_by"`
	Notes               string      `json:"notes" yaml:"notes"`
	OSType              string      `json:"os_type" yaml:"os_type"`
	OSVersion           string      `json:"os_version" yaml:"os_version"`
	Hostname            string      `json:"hostname" yaml:"hostname"`
	Username            string      `json:"username" yaml:"username"`
	TotalLocations      int         `json:"total_locations" yaml:"total_locations"`
	FilesFound          int         `json:"files_found" yaml:"files_found"`
	DirectoriesFound    int         `json:"directories_found" yaml:"directories_found"`
	TotalSizeBytes      int64       `json:"total_size_bytes" yaml:"total_size_bytes"`
	IsBaseline          bool        `json:"is_baseline" yaml:"is_baseline"`
	ChangedFromPrevious *int        `json:"changed_from_previous" yaml:"changed_from_previous"` // nil for a baseline

	Paths       []*SnapshotPath   `json:"paths,omitempty" yaml:"paths,omitempty"`
	Changes     []*SnapshotChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	Tags        []*Tag            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Annotations []*Annotation     `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// TagNames returns the names of all tags attached to the snapshot.
func (s *Snapshot) TagNames() []string {
	names := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		names[i] = t.TagName
	}
	return names
}

// SnapshotPath is the result of scanning one location within a snapshot.
//
// Exists == false implies Type, SizeBytes and ContentRef are empty.
// Type == PathTypeDirectory implies ContentRef is empty.
type SnapshotPath struct {
	Category     string     `json:"category" yaml:"category"`
	Name         string     `json:"name" yaml:"name"`
	PathTemplate string     `json:"path_template" yaml:"path_template"`
	ResolvedPath string     `json:"resolved_path" yaml:"resolved_path"`
	Exists       bool       `json:"exists" yaml:"exists"`
	Type         PathType   `json:"type,omitempty" yaml:"type,omitempty"`
	SizeBytes    *int64     `json:"size_bytes" yaml:"size_bytes"`
	ItemCount    *int       `json:"item_count,omitempty" yaml:"item_count,omitempty"`
	ModifiedTime *time.Time `json:"modified_time,omitempty" yaml:"modified_time,omitempty"`
	CreatedTime  *time.Time `json:"created_time,omitempty" yaml:"created_time,omitempty"`
	AccessedTime *time.Time `json:"accessed_time,omitempty" yaml:"accessed_time,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	ContentRef   ContentRef `json:"content_ref,omitempty" yaml:"content_ref,omitempty"`
}

// Key returns the logical identity of the location: category and name,
// independent of how the template resolved on this machine.
func (p *SnapshotPath) Key() PathKey {
	return PathKey{Category: p.Category, Name: p.Name}
}

// PathKey identifies a configured location across snapshots.
type PathKey struct {
	Category string
	Name     string
}

// ContentEntry is one deduplicated file body.
type ContentEntry struct {
	ContentHash     ContentRef `json:"content_hash" yaml:"content_hash"`
	Content         []byte     `json:"-" yaml:"-"`
	SizeBytes       int64      `json:"size_bytes" yaml:"size_bytes"`
	ReferenceCount  int64      `json:"reference_count" yaml:"reference_count"`
	FirstCapturedAt time.Time  `json:"first_captured_at" yaml:"first_captured_at"`
}

// SnapshotChange is one difference between a snapshot and its predecessor.
type SnapshotChange struct {
	ChangeType         ChangeType `json:"change_type" yaml:"change_type"`
	Category           string     `json:"category" yaml:"category"`
	Name               string     `json:"name" yaml:"name"`
	PreviousContentRef ContentRef `json:"previous_content_ref,omitempty" yaml:"previous_content_ref,omitempty"`
	NewContentRef      ContentRef `json:"new_content_ref,omitempty" yaml:"new_content_ref,omitempty"`
	PreviousSizeBytes  *int64     `json:"previous_size_bytes" yaml:"previous_size_bytes"`
	NewSizeBytes       *int64     `json:"new_size_bytes" yaml:"new_size_bytes"`
}

// Tag is a label attached to a snapshot. TagName is unique per snapshot.
type Tag struct {
	ID          string    `json:"id" yaml:"id"`
	TagName     string    `json:"tag_name" yaml:"tag_name"`
	TagType     string    `json:"tag_type,omitempty" yaml:"tag_type,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
}

// Annotation is free text attached to a snapshot, either by a user or by
// the scanner.
type Annotation struct {
	ID             string    `json:"id" yaml:"id"`
	AnnotationText string    `json:"annotation_text" yaml:"annotation_text"`
	AnnotationType string    `json:"annotation_type,omitempty" yaml:"annotation_type,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	CreatedBy      string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
}

// Page is one page of snapshot summaries. Summaries carry tags but not
// paths, changes or annotations.
type Page struct {
	Items       []*Snapshot `json:"items"`
	Total       int64       `json:"total"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}
