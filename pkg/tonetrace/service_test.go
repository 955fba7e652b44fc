package tonetrace

import (
	"errors"
	"testing"

	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"
)

// stubStorage is an in-memory Storage for service tests.
type stubStorage struct {
	recordings map[string]*Recording
	prints     map[string]fingerprint.Fingerprint
	closed     bool
	nextID     int
}

func newStubStorage() *stubStorage {
	return &stubStorage{
		recordings: make(map[string]*Recording),
		prints:     make(map[string]fingerprint.Fingerprint),
	}
}

func (s *stubStorage) RegisterRecording(title string, durationMs int) (string, error) {
	for id, r := range s.recordings {
		if r.Title == title {
			return id, nil
		}
	}
	s.nextID++
	id := string(rune('a' + s.nextID - 1))
	s.recordings[id] = &Recording{ID: id, Title: title, DurationMs: durationMs}
	return id, nil
}

func (s *stubStorage) StoreFingerprint(recordingID string, fp fingerprint.Fingerprint) error {
	s.prints[recordingID] = fp
	return nil
}

func (s *stubStorage) GetPostingsByHashes(hashes []string) (map[string][]fingerprint.Posting, error) {
	want := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		want[h] = struct{}{}
	}
	index := make(map[string][]fingerprint.Posting)
	for id, fp := range s.prints {
		for _, hp := range fp {
			if _, ok := want[hp.Hash]; ok {
				index[hp.Hash] = append(index[hp.Hash], fingerprint.Posting{RecordingID: id, RefTime: hp.AnchorTime})
			}
		}
	}
	return index, nil
}

func (s *stubStorage) GetFingerprint(recordingID string) (fingerprint.Fingerprint, error) {
	fp, ok := s.prints[recordingID]
	if !ok {
		return nil, errors.New("recording not found")
	}
	return fp, nil
}

func (s *stubStorage) GetRecordingByID(recordingID string) (*Recording, error) {
	rec, ok := s.recordings[recordingID]
	if !ok {
		return nil, errors.New("recording not found")
	}
	return rec, nil
}

func (s *stubStorage) ListRecordings() ([]Recording, error) {
	out := make([]Recording, 0, len(s.recordings))
	for _, r := range s.recordings {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubStorage) DeleteRecordingByID(recordingID string) error {
	delete(s.recordings, recordingID)
	delete(s.prints, recordingID)
	return nil
}

func (s *stubStorage) Close() error {
	s.closed = true
	return nil
}

func TestNewServiceRejectsInvalidEngineConfig(t *testing.T) {
	cfg := fingerprint.DefaultConfig()
	cfg.WindowSize = -1

	if _, err := NewService(WithStorage(newStubStorage()), WithEngineConfig(cfg)); err == nil {
		t.Error("Expected error for invalid engine config")
	}
}

func TestServiceUsesInjectedStorage(t *testing.T) {
	stor := newStubStorage()
	svc, err := NewService(WithStorage(stor))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	id, err := stor.RegisterRecording("Injected", 1000)
	if err != nil {
		t.Fatal(err)
	}
	fp := fingerprint.Fingerprint{{Hash: "h1", AnchorTime: 3}}
	if err := stor.StoreFingerprint(id, fp); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ExportFingerprint(id)
	if err != nil {
		t.Fatalf("ExportFingerprint failed: %v", err)
	}
	if len(got) != 1 || got[0] != fp[0] {
		t.Errorf("Exported fingerprint %+v, expected %+v", got, fp)
	}

	recs, err := svc.ListRecordings()
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Injected" {
		t.Errorf("Unexpected recordings: %+v", recs)
	}

	if err := svc.DeleteRecording(id); err != nil {
		t.Fatalf("DeleteRecording failed: %v", err)
	}
	if _, err := svc.ExportFingerprint(id); err == nil {
		t.Error("Fingerprint still exported after delete")
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !stor.closed {
		t.Error("Close did not reach the storage")
	}
}

func TestServiceCloseIsIdempotentOnStub(t *testing.T) {
	stor := newStubStorage()
	svc, err := NewService(WithStorage(stor))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}
