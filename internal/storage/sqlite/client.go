package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/storage/models"
	"github.com/portalgenie/backend/pkg/logger"
)

// Client records query history and a feedback audit trail. The feedback
// JSON log stays canonical for scoring; this table only serves reporting.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		intent TEXT NOT NULL,
		status TEXT NOT NULL,
		match_count INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_intent ON query_history(intent);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);

	CREATE TABLE IF NOT EXISTS feedback_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_text TEXT NOT NULL,
		matches TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback_audit(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, query_text, intent, status, match_count, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.QueryText,
		record.Intent,
		record.Status,
		record.MatchCount,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Debug("Query recorded",
		zap.String("query_id", record.ID),
		zap.String("intent", record.Intent),
	)

	return nil
}

func (c *Client) GetQueryHistory(limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, query_text, intent, status, match_count, latency_ms, created_at
		FROM query_history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var r models.QueryRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.QueryText, &r.Intent, &r.Status, &r.MatchCount, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) InsertFeedbackAudit(queryText string, matches []string, sentiment string) error {
	query := `INSERT INTO feedback_audit (query_text, matches, sentiment, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, queryText, strings.Join(matches, ","), sentiment, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert feedback audit: %w", err)
	}

	return nil
}
