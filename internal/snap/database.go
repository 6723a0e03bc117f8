package snap

import (
	"context"
	"time"

	"ccsnap/internal/model"
)

// ContentStore maps captured file bodies to deduplicated, reference-counted
// entries. Implementations must make Intern an atomic insert-or-increment.
type ContentStore interface {
	// Intern stores content under its SHA-256 digest and takes one reference
	// to it. Byte-identical content always yields the same ref.
	Intern(ctx context.Context, content []byte) (model.ContentRef, error)

	// Release drops one reference. Entries that reach zero stay in place
	// until SweepContent removes them.
	Release(ctx context.Context, ref model.ContentRef) error

	// GetContent returns the entry for ref, or nil if it does not exist.
	GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error)
}

// SnapshotWriter is the set of operations available inside one database
// transaction. Everything done through a writer commits or rolls back together.
type SnapshotWriter interface {
	ContentStore

	// LatestSnapshot returns the most recent snapshot by snapshot_time with
	// its paths loaded, or nil if the store is empty.
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)

	// FindSnapshot returns the snapshot with its paths loaded, or nil.
	FindSnapshot(ctx context.Context, id string) (*model.Snapshot, error)

	// InsertSnapshot persists the snapshot row along with its paths and changes.
	InsertSnapshot(ctx context.Context, snapshot *model.Snapshot) error

	// InsertTag attaches a tag. It reports false, without error, when the
	// snapshot already carries a tag with the same name.
	InsertTag(ctx context.Context, snapshotID string, tag *model.Tag) (bool, error)

	// InsertAnnotation attaches an annotation.
	InsertAnnotation(ctx context.Context, snapshotID string, annotation *model.Annotation) error

	// DeleteSnapshot removes the snapshot and all rows it owns. It does not
	// touch content reference counts.
	DeleteSnapshot(ctx context.Context, id string) error
}

// SortField selects the ordering of ListSnapshots.
type SortField string

const (
	SortByTime SortField = "time"
	SortBySize SortField = "size"
)

// ListQuery holds the filters, ordering and pagination for ListSnapshots.
// Zero values mean "no filter".
type ListQuery struct {
	TriggerType  model.TriggerType
	Tags         []string
	MatchAllTags bool // require every tag instead of any
	Since        *time.Time
	Until        *time.Time
	Search       string // substring match against notes
	SortBy       SortField
	Ascending    bool
	Page         int // 1-based
	PageSize     int
}

// Database provides an interface for snapshot storage operations.
type Database interface {
	// InTx runs fn inside a single transaction. The transaction commits if
	// fn returns nil and rolls back otherwise, including on ctx cancellation.
	InTx(ctx context.Context, fn func(tx SnapshotWriter) error) error

	// GetSnapshot returns the full aggregate (paths, changes, tags,
	// annotations), or nil if no snapshot has that id.
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)

	// ListSnapshots returns one page of snapshot summaries with tags loaded.
	ListSnapshots(ctx context.Context, query ListQuery) (*model.Page, error)

	// GetContent returns a content entry outside of any transaction, or nil.
	GetContent(ctx context.Context, ref model.ContentRef) (*model.ContentEntry, error)

	// SweepContent deletes content entries that no snapshot path or change
	// record refers to. Returns the number of entries removed.
	SweepContent(ctx context.Context) (int64, error)

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
