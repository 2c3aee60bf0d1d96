package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_students",
		SQL: `CREATE TABLE IF NOT EXISTS students (
  id      BIGSERIAL PRIMARY KEY,
  name    TEXT      NOT NULL,
  email   TEXT      NOT NULL UNIQUE,
  iban    TEXT      NOT NULL,
  card_id TEXT      NOT NULL
);`,
	},
	{
		Name: "create_table_reimbursement_requests",
		SQL: `CREATE TABLE IF NOT EXISTS reimbursement_requests (
  id           BIGSERIAL   PRIMARY KEY,
  student_id   BIGINT      NOT NULL REFERENCES students (id),
  comment      TEXT        NOT NULL DEFAULT '',
  status       TEXT        NOT NULL DEFAULT 'pending',
  submitted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  reviewed_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_receipts",
		SQL: `CREATE TABLE IF NOT EXISTS receipts (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  student_id   BIGINT      NOT NULL REFERENCES students (id),
  request_id   BIGINT      NOT NULL REFERENCES reimbursement_requests (id),
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  sha256_hash  TEXT        NOT NULL UNIQUE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_receipt_metadata",
		SQL: `CREATE TABLE IF NOT EXISTS receipt_metadata (
  id                        BIGSERIAL        PRIMARY KEY,
  receipt_id                UUID             NOT NULL UNIQUE REFERENCES receipts (id) ON DELETE CASCADE,
  exif_status               TEXT             NOT NULL DEFAULT '',
  has_editing_software      BOOLEAN          NOT NULL DEFAULT FALSE,
  editing_software          TEXT             NOT NULL DEFAULT '',
  is_mobile_capture         BOOLEAN          NOT NULL DEFAULT FALSE,
  camera_model              TEXT             NOT NULL DEFAULT '',
  photo_age_days            INTEGER,
  metadata_risk_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
  ocr_successful            BOOLEAN          NOT NULL DEFAULT FALSE,
  card_id                   TEXT             NOT NULL DEFAULT '',
  card_id_confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
  transaction_id            TEXT             NOT NULL DEFAULT '',
  transaction_id_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  text_risk_score           DOUBLE PRECISION NOT NULL DEFAULT 0,
  tampering_score           DOUBLE PRECISION NOT NULL DEFAULT 0,
  assessment                TEXT             NOT NULL DEFAULT '',
  flags                     JSONB            NOT NULL DEFAULT '[]',
  risk_factors              JSONB,
  created_at                TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_receipts_student_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipts_student_id ON receipts (student_id);`,
	},
	{
		Name: "create_index_receipts_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_receipts_created_at ON receipts (created_at);`,
	},
	{
		Name: "create_index_requests_student_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_requests_student_id ON reimbursement_requests (student_id);`,
	},
}

// EnsureMigrated checks if the 'receipts' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.receipts') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
