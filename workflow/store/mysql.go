package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB-backed CheckpointStore, adapted from the
// teacher's store.MySQLStore. It is intended for deployments where the
// checkpoint table is shared with other operational tooling (reporting,
// audit) that a single SQLite file can't serve concurrently.
//
// DSN format: [username[:password]@][protocol[(address)]]/dbname[?params].
// Include parseTime=true in the DSN so updated_at scans into time.Time.
// NEVER hardcode credentials; read the DSN from the environment, as the
// teacher's doc comment for NewMySQLStore recommends.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool against dsn and ensures the
// checkpoints table exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) createTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS checkpoints (
			workflow_id  VARCHAR(255) PRIMARY KEY,
			current_step INT NOT NULL,
			state        VARCHAR(16) NOT NULL,
			context_data JSON NOT NULL,
			metadata     JSON NOT NULL,
			updated_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: create table: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) Save(ctx context.Context, checkpoint *Checkpoint) error {
	contextData, err := json.Marshal(checkpoint.ContextData)
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal context_data: %w", err)}
	}
	metadata, err := json.Marshal(checkpoint.Metadata)
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal metadata: %w", err)}
	}

	const upsert = `
		INSERT INTO checkpoints (workflow_id, current_step, state, context_data, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			current_step = VALUES(current_step),
			state        = VALUES(state),
			context_data = VALUES(context_data),
			metadata     = VALUES(metadata)
	`
	if _, err := s.db.ExecContext(ctx, upsert,
		checkpoint.WorkflowID, checkpoint.CurrentStep, string(checkpoint.State), contextData, metadata,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *MySQLStore) Load(ctx context.Context, workflowID string) (*Checkpoint, error) {
	const query = `
		SELECT workflow_id, current_step, state, context_data, metadata, updated_at
		FROM checkpoints WHERE workflow_id = ?
	`
	row := s.db.QueryRowContext(ctx, query, workflowID)

	var (
		cp                       Checkpoint
		state                    string
		contextData, metadataRaw []byte
	)
	if err := row.Scan(&cp.WorkflowID, &cp.CurrentStep, &state, &contextData, &metadataRaw, &cp.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	cp.State = State(state)

	if err := json.Unmarshal(contextData, &cp.ContextData); err != nil {
		return nil, &SerializationError{Cause: fmt.Errorf("unmarshal context_data: %w", err)}
	}
	if err := json.Unmarshal(metadataRaw, &cp.Metadata); err != nil {
		return nil, &SerializationError{Cause: fmt.Errorf("unmarshal metadata: %w", err)}
	}
	return &cp, nil
}

func (s *MySQLStore) Delete(ctx context.Context, workflowID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE workflow_id = ?`, workflowID); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
