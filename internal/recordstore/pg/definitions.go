package pg

import sq "github.com/Masterminds/squirrel"

const (
	recordsTable = "archive_records"

	colTargetPath        = "target_path"
	colSourcePath        = "source_path"
	colType              = "type"
	colSignature         = "signature_json"
	colVirtualTargetPath = "virtual_target_path"
	colCreatedAt         = "created_at"
	colUpdatedAt         = "updated_at"
	colLastSeenAt        = "last_seen_at"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	selectRecordStmt = psql.Select(
		colTargetPath, colSourcePath, colType, colSignature,
		colVirtualTargetPath, colCreatedAt, colUpdatedAt, colLastSeenAt,
	).From(recordsTable)
)
