package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocket/internal/task"

	_ "modernc.org/sqlite"
)

// HistoryEntry 归档的已完结任务 / HistoryEntry is an archived finished task
type HistoryEntry struct {
	TaskID     string
	ItemID     string
	ItemName   string
	ItemType   string
	ActionKind string
	ActionDesc string
	RawCommand string
	Confidence float64
	Status     string
	Result     string
	FailReason string
	CreatedAt  string
	FinishedAt string
}

// HistoryStore 基于 SQLite (WAL 模式) 的任务历史归档，带保留上限：
// 插入后淘汰最旧的行，环形缓冲语义。
// HistoryStore archives finished tasks in SQLite (WAL mode) with a
// retention cap: oldest rows are evicted on insert, ring-buffer style.
type HistoryStore struct {
	db    *sql.DB
	limit int
}

// NewHistoryStore 打开（必要时创建）历史数据库
// NewHistoryStore opens (creating if needed) the history database
func NewHistoryStore(dbPath string, limit int) (*HistoryStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("history db path is empty")
	}
	if limit <= 0 {
		limit = 200
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &HistoryStore{db: db, limit: limit}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *HistoryStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_history (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     TEXT NOT NULL,
		item_id     TEXT NOT NULL DEFAULT '',
		item_name   TEXT NOT NULL DEFAULT '',
		item_type   TEXT NOT NULL DEFAULT '',
		action_kind TEXT NOT NULL,
		action_desc TEXT NOT NULL DEFAULT '',
		raw_command TEXT NOT NULL DEFAULT '',
		confidence  REAL NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		result      TEXT NOT NULL DEFAULT '',
		fail_reason TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_task_history_status ON task_history(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close 关闭数据库连接 / Close the database connection
func (s *HistoryStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append 归档一个已完结任务并执行保留策略
// Append archives a finished task and enforces the retention cap
func (s *HistoryStore) Append(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}
	if !t.Status.Terminal() {
		return fmt.Errorf("task %s is not terminal: %s", t.ID, t.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO task_history
			(task_id, item_id, item_name, item_type, action_kind, action_desc,
			 raw_command, confidence, status, result, fail_reason, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Item.ID, t.Item.Name, string(t.Item.Type),
		string(t.Intent.Action.Kind), t.Intent.Action.Description(),
		t.Intent.RawCommand, t.Intent.Confidence,
		string(t.Status), t.Result, t.FailReason,
		formatTime(t.CreatedAt), formatTime(t.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert history row: %w", err)
	}

	// 保留上限：淘汰最旧的行 / Retention cap: evict oldest rows
	if _, err := tx.Exec(`
		DELETE FROM task_history WHERE seq NOT IN (
			SELECT seq FROM task_history ORDER BY seq DESC LIMIT ?
		)`, s.limit); err != nil {
		return fmt.Errorf("enforce retention: %w", err)
	}

	return tx.Commit()
}

// Recent 按完结顺序倒序返回最近 n 条 / Recent returns the latest n entries
func (s *HistoryStore) Recent(n int) ([]HistoryEntry, error) {
	if n <= 0 {
		n = s.limit
	}
	rows, err := s.db.Query(`
		SELECT task_id, item_id, item_name, item_type, action_kind, action_desc,
		       raw_command, confidence, status, result, fail_reason, created_at, finished_at
		FROM task_history ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByStatus 按终态过滤 / ByStatus filters by terminal status
func (s *HistoryStore) ByStatus(status task.Status, n int) ([]HistoryEntry, error) {
	if n <= 0 {
		n = s.limit
	}
	rows, err := s.db.Query(`
		SELECT task_id, item_id, item_name, item_type, action_kind, action_desc,
		       raw_command, confidence, status, result, fail_reason, created_at, finished_at
		FROM task_history WHERE status=? ORDER BY seq DESC LIMIT ?`, string(status), n)
	if err != nil {
		return nil, fmt.Errorf("query history by status: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count 当前归档条数 / Count returns the number of archived entries
func (s *HistoryStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM task_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.TaskID, &e.ItemID, &e.ItemName, &e.ItemType,
			&e.ActionKind, &e.ActionDesc, &e.RawCommand, &e.Confidence,
			&e.Status, &e.Result, &e.FailReason, &e.CreatedAt, &e.FinishedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return t.UTC().Format(time.RFC3339)
}
