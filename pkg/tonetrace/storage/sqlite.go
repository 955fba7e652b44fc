package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"
)

const DefaultDBFile = "tonetrace.sqlite3"

const hashBatchSize = 500

// DBClient wraps the gorm handle for the fingerprint database.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Recording is one indexed reference recording.
type Recording struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	Title      string `gorm:"uniqueIndex:idx_recording_title" json:"title"`
	DurationMs int    `json:"duration_ms"`
	CreatedAt  time.Time
}

// HashEntry is one stored (hash, recording, reference time) record. The
// round-trip of (Hash, RefTime) pairs per recording is lossless.
type HashEntry struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Hash        string `gorm:"index:idx_hash;type:varchar(40)" json:"hash"`
	RecordingID string `gorm:"type:varchar(36);index:idx_recording" json:"recording_id"`
	RefTime     int    `json:"ref_time"`
}

// NewDBClient opens the database at TONETRACE_DB_PATH, falling back to the
// default file in the working directory.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("TONETRACE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Recording{}, &HashEntry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterRecording creates a recording row, or returns the existing id when
// a recording with the same title is already indexed.
func (c *DBClient) RegisterRecording(title string, durationMs int) (string, error) {
	var rec Recording

	err := c.DB.Where("title = ?", title).First(&rec).Error
	if err == nil {
		return rec.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing recording: %w", err)
	}

	rec = Recording{ID: uuid.NewString(), Title: title, DurationMs: durationMs}
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating recording: %w", err)
	}
	return rec.ID, nil
}

// StoreFingerprint persists a fingerprint as hash entries for one recording.
func (c *DBClient) StoreFingerprint(recordingID string, fp fingerprint.Fingerprint) error {
	if len(fp) == 0 {
		return nil
	}

	entries := make([]HashEntry, len(fp))
	for i, hp := range fp {
		entries[i] = HashEntry{Hash: hp.Hash, RecordingID: recordingID, RefTime: hp.AnchorTime}
	}
	if err := c.DB.CreateInBatches(entries, hashBatchSize).Error; err != nil {
		return fmt.Errorf("storing hash entries: %w", err)
	}
	return nil
}

// GetPostingsByHashes builds the inverted index slice for a set of query
// hashes: every stored occurrence of each hash across all recordings.
func (c *DBClient) GetPostingsByHashes(hashes []string) (map[string][]fingerprint.Posting, error) {
	index := make(map[string][]fingerprint.Posting)

	for start := 0; start < len(hashes); start += hashBatchSize {
		end := start + hashBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}

		var entries []HashEntry
		if err := c.DB.Where("hash IN ?", hashes[start:end]).Find(&entries).Error; err != nil {
			return nil, fmt.Errorf("querying hash entries: %w", err)
		}
		for _, e := range entries {
			index[e.Hash] = append(index[e.Hash], fingerprint.Posting{
				RecordingID: e.RecordingID,
				RefTime:     e.RefTime,
			})
		}
	}
	return index, nil
}

// GetFingerprint reloads the stored fingerprint of one recording.
func (c *DBClient) GetFingerprint(recordingID string) (fingerprint.Fingerprint, error) {
	var entries []HashEntry
	if err := c.DB.Where("recording_id = ?", recordingID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying recording fingerprint: %w", err)
	}

	fp := make(fingerprint.Fingerprint, len(entries))
	for i, e := range entries {
		fp[i] = fingerprint.HashPoint{Hash: e.Hash, AnchorTime: e.RefTime}
	}
	return fp, nil
}

func (c *DBClient) GetRecordingByID(id string) (*Recording, error) {
	var rec Recording
	if err := c.DB.First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *DBClient) ListRecordings() ([]Recording, error) {
	var recs []Recording
	if err := c.DB.Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteRecordingByID removes a recording and all of its hash entries.
func (c *DBClient) DeleteRecordingByID(id string) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", id).Delete(&HashEntry{}).Error; err != nil {
			return fmt.Errorf("deleting hash entries: %w", err)
		}
		if err := tx.Delete(&Recording{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting recording: %w", err)
		}
		return nil
	})
}

// CountHashEntries returns the number of stored hashes for one recording.
func (c *DBClient) CountHashEntries(recordingID string) (int, error) {
	var count int64
	if err := c.DB.Model(&HashEntry{}).Where("recording_id = ?", recordingID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
