// Package recordstore defines the persistent bookkeeping table the Planner
// and Diff Engine consult to decide whether a physical output is current.
package recordstore

import (
	"context"
	"time"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Store is the narrow persistence contract the Scan Engine needs. Callers
// serialize access through the single job worker; Store implementations are
// not required to provide their own external locking.
type Store interface {
	// Get returns the record for targetPath, or (zero, false) if none exists.
	Get(ctx context.Context, targetPath string) (entity.ArchiveRecord, bool, error)

	// Upsert creates or updates the record for targetPath in one
	// transaction. CreatedAt is set only on insert; UpdatedAt and
	// LastSeenAt are always set to now.
	Upsert(ctx context.Context, targetPath, sourcePath string, recordType entity.RecordType, sig entity.Signature, virtualTargetPath string, now time.Time) error

	// Touch bumps LastSeenAt for targetPath without altering any other
	// field. It is a no-op if the record doesn't exist.
	Touch(ctx context.Context, targetPath string, now time.Time) error

	// ListAll returns every record, order unspecified.
	ListAll(ctx context.Context) ([]entity.ArchiveRecord, error)

	// ListByType returns every record whose Type is in types.
	ListByType(ctx context.Context, types ...entity.RecordType) ([]entity.ArchiveRecord, error)
}
