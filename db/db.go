package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/models"
)

const schema = `CREATE TABLE IF NOT EXISTS transcripts (
	cache_key     TEXT PRIMARY KEY,
	video_id      TEXT NOT NULL,
	language_code TEXT NOT NULL,
	payload       TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcripts_video_id ON transcripts(video_id);`

// Store caches fetched transcripts in sqlite. Entries older than the TTL are
// treated as missing; a zero TTL keeps entries forever.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func Open(dbPath string, ttl time.Duration) (*Store, error) {
	logrus.WithField("path", dbPath).Info("Initializing transcript cache")

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "error creating directory for database")
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error creating schema")
	}

	return &Store{db: conn, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CacheKey identifies a request: the video, the ordered language preference
// and the translation target (empty for none).
func CacheKey(videoID string, languages []string, target string) string {
	return videoID + "|" + strings.Join(languages, ",") + "|" + target
}

// Get returns the cached transcript for key, or ok=false when it is missing
// or expired.
func (s *Store) Get(ctx context.Context, key string) (*models.TranscriptResult, bool, error) {
	var (
		payload   string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT payload, created_at FROM transcripts WHERE cache_key = ?", key).Scan(&payload, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "error querying database")
	}

	if s.expired(createdAt) {
		return nil, false, nil
	}

	result := new(models.TranscriptResult)
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return nil, false, errors.Wrap(err, "error decoding cached transcript")
	}
	return result, true, nil
}

func (s *Store) Save(ctx context.Context, key string, result *models.TranscriptResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "error encoding transcript")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transcripts (cache_key, video_id, language_code, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			video_id=excluded.video_id,
			language_code=excluded.language_code,
			payload=excluded.payload,
			created_at=excluded.created_at`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error preparing statement")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, key, result.VideoID, result.LanguageCode, string(payload), s.now().UnixNano()); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error executing statement")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}

// DeleteVideo drops every cached transcript of a video.
func (s *Store) DeleteVideo(ctx context.Context, videoID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE video_id = ?", videoID)
	if err != nil {
		return 0, errors.Wrap(err, "error executing delete statement")
	}
	return res.RowsAffected()
}

// Purge removes expired entries.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "error executing purge statement")
	}
	return res.RowsAffected()
}

func (s *Store) expired(createdAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, createdAt)) > s.ttl
}
