package tonetrace

import (
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/storage"
)

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates the default SQLite-backed storage.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) RegisterRecording(title string, durationMs int) (string, error) {
	return s.db.RegisterRecording(title, durationMs)
}

func (s *storageAdapter) StoreFingerprint(recordingID string, fp fingerprint.Fingerprint) error {
	return s.db.StoreFingerprint(recordingID, fp)
}

func (s *storageAdapter) GetPostingsByHashes(hashes []string) (map[string][]fingerprint.Posting, error) {
	return s.db.GetPostingsByHashes(hashes)
}

func (s *storageAdapter) GetFingerprint(recordingID string) (fingerprint.Fingerprint, error) {
	return s.db.GetFingerprint(recordingID)
}

func (s *storageAdapter) GetRecordingByID(recordingID string) (*Recording, error) {
	rec, err := s.db.GetRecordingByID(recordingID)
	if err != nil {
		return nil, err
	}
	return &Recording{ID: rec.ID, Title: rec.Title, DurationMs: rec.DurationMs}, nil
}

func (s *storageAdapter) ListRecordings() ([]Recording, error) {
	dbRecs, err := s.db.ListRecordings()
	if err != nil {
		return nil, err
	}

	recs := make([]Recording, len(dbRecs))
	for i, r := range dbRecs {
		recs[i] = Recording{ID: r.ID, Title: r.Title, DurationMs: r.DurationMs}
	}
	return recs, nil
}

func (s *storageAdapter) DeleteRecordingByID(recordingID string) error {
	return s.db.DeleteRecordingByID(recordingID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
