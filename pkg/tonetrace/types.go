package tonetrace

// MatchResult is one ranked identification result.
type MatchResult struct {
	RecordingID string // database ID of the matched recording
	Title       string // recording title (file path for directory scans)
	Score       int    // size of the largest offset-aligned hash cluster
	Offset      int    // reference time minus query time, in frames
}

// Recording is one indexed reference recording.
type Recording struct {
	ID         string
	Title      string
	DurationMs int
}
