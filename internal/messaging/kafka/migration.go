package kafka

import (
	"context"
	"database/sql"
)

// EnsureOutboxTable creates the outbox table when it does not exist yet.
// The entity tables are migrated through gorm; the outbox is raw SQL only,
// so it gets its own migration.
func EnsureOutboxTable(ctx context.Context, db *sql.DB) error {
	const query = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id              uuid PRIMARY KEY,
	request_id      varchar(100),
	aggregate_type  varchar(50)  NOT NULL,
	aggregate_id    varchar(200) NOT NULL,
	event_type      varchar(100) NOT NULL,
	topic           varchar(200) NOT NULL,
	payload         jsonb        NOT NULL,
	status          varchar(20)  NOT NULL DEFAULT 'pending',
	retry_count     int          NOT NULL DEFAULT 0,
	error_message   varchar(500),
	next_retry_at   timestamptz,
	processed_at    timestamptz,
	created_at      timestamptz  NOT NULL DEFAULT NOW(),
	updated_at      timestamptz  NOT NULL DEFAULT NOW()
)
`
	_, err := db.ExecContext(ctx, query)
	return err
}
