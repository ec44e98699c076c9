// SPDX-License-Identifier: AGPL-3.0-or-later

// Package statepg is a Postgres-backed state.Adapter: one row per
// (part, step) in a partbuilder_state table, written through pgx's
// database/sql driver so the rest of the engine can treat it exactly
// like statefile.
package statepg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Adapter is a state.Adapter backed by a Postgres table.
type Adapter struct {
	db *sql.DB
}

// Open connects to dsn and ensures the backing table exists.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	a := &Adapter{db: db}
	if err := a.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error { return a.db.Close() }

func (a *Adapter) ensureTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS partbuilder_state (
			part_name                   VARCHAR(255) NOT NULL,
			step                        VARCHAR(16)  NOT NULL,
			timestamp                   BIGINT       NOT NULL,
			properties_of_interest      JSONB        NOT NULL DEFAULT '{}',
			project_options_of_interest JSONB        NOT NULL DEFAULT '{}',
			PRIMARY KEY (part_name, step)
		)
	`
	_, err := a.db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring partbuilder_state table: %w", err)
	}
	return nil
}

// Load returns the recorded state for (partName, s), or a zero-timestamp
// PartState if no row exists.
func (a *Adapter) Load(partName string, s step.Step) (state.PartState, error) {
	ctx := context.Background()

	var (
		timestamp  int64
		properties []byte
		options    []byte
	)

	err := a.db.QueryRowContext(ctx,
		`SELECT timestamp, properties_of_interest, project_options_of_interest
		 FROM partbuilder_state WHERE part_name = $1 AND step = $2`,
		partName, s.String(),
	).Scan(&timestamp, &properties, &options)

	if err == sql.ErrNoRows {
		return state.PartState{}, nil
	}
	if err != nil {
		return state.PartState{}, fmt.Errorf("loading state for %s:%s: %w", partName, s, err)
	}

	var props, opts map[string]any
	if err := json.Unmarshal(properties, &props); err != nil {
		return state.PartState{}, fmt.Errorf("decoding properties for %s:%s: %w", partName, s, err)
	}
	if err := json.Unmarshal(options, &opts); err != nil {
		return state.PartState{}, fmt.Errorf("decoding options for %s:%s: %w", partName, s, err)
	}

	return state.PartState{
		Timestamp:                timestamp,
		PropertiesOfInterest:     props,
		ProjectOptionsOfInterest: opts,
	}, nil
}

// Save upserts the row for (partName, s).
func (a *Adapter) Save(partName string, s step.Step, st state.PartState) error {
	ctx := context.Background()

	properties := st.PropertiesOfInterest
	if properties == nil {
		properties = map[string]any{}
	}
	options := st.ProjectOptionsOfInterest
	if options == nil {
		options = map[string]any{}
	}

	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("encoding properties for %s:%s: %w", partName, s, err)
	}
	optsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encoding options for %s:%s: %w", partName, s, err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO partbuilder_state (part_name, step, timestamp, properties_of_interest, project_options_of_interest)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (part_name, step) DO UPDATE
		 SET timestamp = EXCLUDED.timestamp,
		     properties_of_interest = EXCLUDED.properties_of_interest,
		     project_options_of_interest = EXCLUDED.project_options_of_interest`,
		partName, s.String(), st.Timestamp, propsJSON, optsJSON,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("saving state for %s:%s: %w", partName, s, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state for %s:%s: %w", partName, s, err)
	}

	return nil
}

// Remove deletes the row for (partName, s), if present.
func (a *Adapter) Remove(partName string, s step.Step) error {
	ctx := context.Background()
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM partbuilder_state WHERE part_name = $1 AND step = $2`,
		partName, s.String(),
	)
	if err != nil {
		return fmt.Errorf("removing state for %s:%s: %w", partName, s, err)
	}
	return nil
}
