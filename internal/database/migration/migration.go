package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.applications"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  applicant_id TEXT        NOT NULL,
  type         TEXT        NOT NULL,
  number       VARCHAR(40) NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT documents_applicant_type_key UNIQUE (applicant_id, type)
);`,
	},
	{
		Name: "create_index_documents_applicant_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_applicant_uploaded_at ON documents (applicant_id, uploaded_at);`,
	},
	{
		Name: "create_table_subsidies",
		SQL: `CREATE TABLE IF NOT EXISTS subsidies (
  id                 TEXT        PRIMARY KEY,
  title              TEXT        NOT NULL,
  description        TEXT        NOT NULL DEFAULT '',
  provider           TEXT        NOT NULL DEFAULT '',
  documents_required JSONB       NOT NULL DEFAULT '[]'::jsonb,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  applicant_id   TEXT             PRIMARY KEY,
  full_name      TEXT             NOT NULL DEFAULT '',
  father_name    TEXT             NOT NULL DEFAULT '',
  mobile         TEXT             NOT NULL DEFAULT '',
  address        TEXT             NOT NULL DEFAULT '',
  state          TEXT             NOT NULL DEFAULT '',
  district       TEXT             NOT NULL DEFAULT '',
  sub_district   TEXT             NOT NULL DEFAULT '',
  village        TEXT             NOT NULL DEFAULT '',
  survey_number  TEXT             NOT NULL DEFAULT '',
  land_acres     DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (land_acres >= 0),
  bank_name      TEXT             NOT NULL DEFAULT '',
  account_number TEXT             NOT NULL DEFAULT '',
  ifsc           TEXT             NOT NULL DEFAULT '',
  updated_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  subsidy_id   TEXT        NOT NULL REFERENCES subsidies (id),
  applicant_id TEXT        NOT NULL,
  form         JSONB       NOT NULL DEFAULT '{}'::jsonb,
  document_ids JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status       TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_applications_applicant",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications (applicant_id, created_at);`,
	},
}

// EnsureMigrated checks for the sentinel table and runs every step when it is missing.
// Steps are idempotent, so a run interrupted halfway is completed by the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	log = log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
	})

	log.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	log.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("migrating schema")

	for _, step := range steps {
		stepStart := time.Now()
		stepLog := log.WithField("migration_step", step.Name)
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			stepLog.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		stepLog.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"steps":       len(steps),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
