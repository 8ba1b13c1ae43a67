package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxAutoCheckpoints is how many automatic checkpoints are kept.
const maxAutoCheckpoints = 5

// Checkpoint errors.
var (
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrCheckpointExists   = errors.New("checkpoint already exists")
	ErrInvalidCheckpoint  = errors.New("invalid checkpoint tag")
)

// CheckpointInfo describes a stored database snapshot.
type CheckpointInfo struct {
	CreatedAt     time.Time
	ID            string
	FileSize      int64
	Runs          int
	SchemaVersion int
}

// CheckpointManager snapshots the database into a checkpoints directory next
// to it.
type CheckpointManager struct {
	db             *sql.DB
	checkpointsDir string
}

// NewCheckpointManager creates a checkpoint manager for a file-backed store.
func NewCheckpointManager(s *SQLiteStorage) (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, fmt.Errorf("%w: in-memory databases cannot be checkpointed", ErrInvalidCheckpoint)
	}
	dir, err := filepath.Abs(filepath.Join(filepath.Dir(s.dbPath), "checkpoints"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve checkpoints directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	return &CheckpointManager{db: s.db, checkpointsDir: dir}, nil
}

// Create snapshots the database under tag.
func (cm *CheckpointManager) Create(ctx context.Context, tag string) (*CheckpointInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", time.Now().Format("2006-01-02-150405"))
	}
	if strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCheckpoint, tag)
	}

	path := cm.path(tag)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	info := &CheckpointInfo{ID: tag, CreatedAt: time.Now().UTC()}
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := cm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&info.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - tag is validated above and the directory is absolute
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", path)); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	info.FileSize = stat.Size()

	if _, err := cm.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkpoint_metadata (id, created_at, file_size, runs, schema_version) VALUES (?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt, info.FileSize, info.Runs, info.SchemaVersion,
	); err != nil {
		// The snapshot is still usable without its metadata row.
		slog.Warn("failed to store checkpoint metadata", "error", err, "checkpoint", tag)
	}
	return info, nil
}

// AutoCheckpoint snapshots the database before an operation named prefix and
// prunes older automatic checkpoints.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, prefix string) (*CheckpointInfo, error) {
	info, err := cm.Create(ctx, fmt.Sprintf("auto-%s-%s", prefix, time.Now().Format("20060102-150405.000")))
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}
	if err := cm.prune(ctx, "auto-"+prefix+"-", maxAutoCheckpoints); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}
	return info, nil
}

// List returns the recorded checkpoints, newest first.
func (cm *CheckpointManager) List(ctx context.Context) ([]CheckpointInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := cm.db.QueryContext(ctx,
		`SELECT id, created_at, file_size, runs, schema_version FROM checkpoint_metadata ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []CheckpointInfo
	for rows.Next() {
		var info CheckpointInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.FileSize, &info.Runs, &info.SchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint file and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := os.Remove(cm.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove checkpoint metadata", "error", err, "id", id)
	}
	return nil
}

// Path returns the snapshot file of a checkpoint.
func (cm *CheckpointManager) Path(id string) string {
	return cm.path(id)
}

func (cm *CheckpointManager) path(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) prune(ctx context.Context, prefix string, keep int) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, cp := range checkpoints {
		if !strings.HasPrefix(cp.ID, prefix) {
			continue
		}
		kept++
		if kept <= keep {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint", "error", err, "checkpoint", cp.ID)
		}
	}
	return nil
}
