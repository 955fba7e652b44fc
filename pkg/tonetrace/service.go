package tonetrace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/MiguelRiosT/tone-trace/pkg/logger"
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/audio"
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"
	"github.com/MiguelRiosT/tone-trace/pkg/utils"
)

// traceService is the default implementation of the Service interface.
type traceService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &traceService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// loadSamples converts an audio file to mono WAV at the configured rate and
// decodes it into normalized samples.
func (s *traceService) loadSamples(ctx context.Context, audioPath string) ([]float64, int, error) {
	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer func() {
		if err := utils.DeleteFile(wavPath); err != nil {
			s.log.Warnf("Failed to remove temp file %s: %v", wavPath, err)
		}
	}()

	samples, sampleRate, err := audio.ReadWAVAsFloat64(wavPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV file: %w", err)
	}
	return samples, sampleRate, nil
}

// IndexRecording fingerprints an audio file and stores the result as a new
// reference recording. Returns the recording id.
func (s *traceService) IndexRecording(ctx context.Context, audioPath, title string) (string, error) {
	s.log.Infof("Indexing recording: %s", title)

	samples, sampleRate, err := s.loadSamples(ctx, audioPath)
	if err != nil {
		return "", err
	}

	fp, err := fingerprint.FingerprintSamples(samples, sampleRate, s.config.Engine)
	if err != nil {
		return "", fmt.Errorf("fingerprinting failed: %w", err)
	}
	s.log.Infof("Generated %d hashes", len(fp))

	durationMs := int(float64(len(samples)) / float64(sampleRate) * 1000)
	recordingID, err := s.storage.RegisterRecording(title, durationMs)
	if err != nil {
		return "", fmt.Errorf("failed to register recording: %w", err)
	}

	if err := s.storage.StoreFingerprint(recordingID, fp); err != nil {
		s.storage.DeleteRecordingByID(recordingID) // rollback
		return "", fmt.Errorf("failed to store fingerprint: %w", err)
	}

	s.log.Infof("Indexed recording %s (%d ms)", recordingID, durationMs)
	return recordingID, nil
}

// Identify fingerprints a query clip and votes it against every stored
// recording, returning matches ranked by score.
func (s *traceService) Identify(ctx context.Context, audioPath string) ([]MatchResult, error) {
	s.log.Infof("Identifying audio: %s", audioPath)

	samples, sampleRate, err := s.loadSamples(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	queryFP, err := fingerprint.FingerprintSamples(samples, sampleRate, s.config.Engine)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting failed: %w", err)
	}
	s.log.Infof("Query has %d hashes", len(queryFP))

	seen := make(map[string]struct{}, len(queryFP))
	hashes := make([]string, 0, len(queryFP))
	for _, hp := range queryFP {
		if _, ok := seen[hp.Hash]; ok {
			continue
		}
		seen[hp.Hash] = struct{}{}
		hashes = append(hashes, hp.Hash)
	}

	index, err := s.storage.GetPostingsByHashes(hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to load hash postings: %w", err)
	}
	s.log.Debugf("Found postings for %d/%d hashes", len(index), len(hashes))

	matches := fingerprint.ScoreAgainstIndex(queryFP, index)

	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		rec, err := s.storage.GetRecordingByID(m.RecordingID)
		if err != nil {
			s.log.Warnf("Failed to load recording %s: %v", m.RecordingID, err)
			continue
		}
		results = append(results, MatchResult{
			RecordingID: m.RecordingID,
			Title:       rec.Title,
			Score:       m.Score,
			Offset:      m.Offset,
		})
	}

	s.log.Infof("Returning %d matches", len(results))
	return results, nil
}

// ScanDirectory runs the block scanner: the query clip is compared against
// every WAV file in dir, block by block, and candidates clearing the dynamic
// threshold are returned ranked by best block score.
func (s *traceService) ScanDirectory(ctx context.Context, queryPath, dir string, blockDuration float64, minMatchingBlocks int) ([]MatchResult, error) {
	s.log.Infof("Scanning %s for matches of %s", dir, queryPath)

	querySamples, sampleRate, err := s.loadSamples(ctx, queryPath)
	if err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	candidates := make(map[string][]float64, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		samples, rate, err := audio.ReadWAVAsFloat64(p)
		if err != nil {
			s.log.Warnf("Skipping unreadable candidate %s: %v", p, err)
			continue
		}
		if rate != sampleRate {
			s.log.Warnf("Skipping %s: sample rate %d differs from query rate %d", p, rate, sampleRate)
			continue
		}
		candidates[p] = samples
	}
	s.log.Infof("Scanning %d candidates", len(candidates))

	blockMatches, err := fingerprint.ScanForMatches(querySamples, sampleRate, candidates, blockDuration, minMatchingBlocks, s.config.Engine)
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, len(blockMatches))
	for i, bm := range blockMatches {
		results[i] = MatchResult{
			RecordingID: bm.RecordingID,
			Title:       bm.RecordingID,
			Score:       bm.Score,
		}
	}
	return results, nil
}

// ExportFingerprint reloads the stored (hash, reference time) pairs of one
// recording.
func (s *traceService) ExportFingerprint(recordingID string) (fingerprint.Fingerprint, error) {
	return s.storage.GetFingerprint(recordingID)
}

func (s *traceService) ListRecordings() ([]Recording, error) {
	return s.storage.ListRecordings()
}

func (s *traceService) DeleteRecording(recordingID string) error {
	return s.storage.DeleteRecordingByID(recordingID)
}

func (s *traceService) Close() error {
	return s.storage.Close()
}
