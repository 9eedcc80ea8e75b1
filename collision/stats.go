package collision

import "log/slog"

// FrameStats counts what one collision pass did. Field tags name the CSV columns.
type FrameStats struct {
	Tick       uint64 `csv:"tick"`
	Colliders  int    `csv:"colliders"`
	TagPairs   int    `csv:"tag_pairs"`
	Candidates int    `csv:"candidates"`
	Overlaps   int    `csv:"overlaps"`
	Triggers   int    `csv:"triggers"`
	Contacts   int    `csv:"contacts"`
	Responses  int    `csv:"responses"`
	Skipped    int    `csv:"skipped"`
	Batches    int    `csv:"parallel_batches"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Int("colliders", s.Colliders),
		slog.Int("tag_pairs", s.TagPairs),
		slog.Int("candidates", s.Candidates),
		slog.Int("overlaps", s.Overlaps),
		slog.Int("triggers", s.Triggers),
		slog.Int("contacts", s.Contacts),
		slog.Int("responses", s.Responses),
		slog.Int("skipped", s.Skipped),
		slog.Int("parallel_batches", s.Batches),
	)
}
