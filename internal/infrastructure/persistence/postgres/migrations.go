package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: DOCUMENT COLLECTIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Documents = `
-- Firestore-style document collections. The trigger layer reads whole
-- documents; JSONB keeps the schema open while the platform is still moving.
CREATE TABLE IF NOT EXISTS documents (
    collection VARCHAR(50) NOT NULL,
    id TEXT NOT NULL,
    data JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: LESSON SUBMISSIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Submissions = `
-- Append-only submission ledger. Rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS lessons_submissions (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    cohort_id TEXT NOT NULL,
    lesson TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_submissions_user_cohort ON lessons_submissions(user_id, cohort_id);
CREATE INDEX IF NOT EXISTS idx_submissions_cohort ON lessons_submissions(cohort_id);
`

var migrations = []string{
	migration001Documents,
	migration002Submissions,
}

// Migrate applies all migrations in order. Statements are idempotent.
func Migrate(ctx context.Context, conn *Connection) error {
	for i, m := range migrations {
		if _, err := conn.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %03d failed: %w", i+1, err)
		}
	}
	return nil
}
