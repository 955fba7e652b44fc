package tonetrace

import (
	"context"

	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"
)

// Service is the high-level audio identification API.
type Service interface {
	IndexRecording(ctx context.Context, audioPath, title string) (string, error)
	Identify(ctx context.Context, audioPath string) ([]MatchResult, error)
	ScanDirectory(ctx context.Context, queryPath, dir string, blockDuration float64, minMatchingBlocks int) ([]MatchResult, error)
	ExportFingerprint(recordingID string) (fingerprint.Fingerprint, error)
	ListRecordings() ([]Recording, error)
	DeleteRecording(recordingID string) error
	Close() error
}

// Storage persists fingerprints and recording metadata. Implementations must
// round-trip (hash, reference time) pairs losslessly.
type Storage interface {
	RegisterRecording(title string, durationMs int) (string, error)
	StoreFingerprint(recordingID string, fp fingerprint.Fingerprint) error
	GetPostingsByHashes(hashes []string) (map[string][]fingerprint.Posting, error)
	GetFingerprint(recordingID string) (fingerprint.Fingerprint, error)
	GetRecordingByID(recordingID string) (*Recording, error)
	ListRecordings() ([]Recording, error)
	DeleteRecordingByID(recordingID string) error
	Close() error
}

// Logger is the minimal leveled logging surface the service needs.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
