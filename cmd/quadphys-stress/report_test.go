package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/quadphys/collision"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{}
	for i := 100; i >= 1; i-- {
		s.Samples = append(s.Samples, time.Duration(i)*time.Millisecond)
	}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 50500*time.Microsecond, s.Avg)
	assert.Equal(t, 50*time.Millisecond, s.P50)
	assert.Equal(t, 95*time.Millisecond, s.P95)
	assert.Equal(t, 99*time.Millisecond, s.P99)
	assert.Positive(t, s.StdDev)
}

func TestStatsFinalizeEmpty(t *testing.T) {
	s := Stats{}
	s.Finalize()
	assert.Zero(t, s.Max)
}

func TestWriteFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.csv")
	frames := []frameRecord{
		{FrameStats: collision.FrameStats{Tick: 1, Colliders: 10, Overlaps: 2}, UpdateMicros: 150},
		{FrameStats: collision.FrameStats{Tick: 2, Colliders: 10, Overlaps: 3}, UpdateMicros: 140},
	}
	require.NoError(t, writeFrames(path, frames))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tick,colliders,tag_pairs,candidates,overlaps,triggers,contacts,responses,skipped,parallel_batches,update_us", lines[0])
	assert.Equal(t, "1,10,0,0,2,0,0,0,0,0,150", lines[1])
}

func TestReportGenerate(t *testing.T) {
	r := &Report{Duration: time.Second, Entities: 10, Level: 4, Workers: 2}
	r.Collisions.Add(collision.FrameStats{Candidates: 12, Overlaps: 4, Triggers: 1})
	r.Collisions.Add(collision.FrameStats{Candidates: 8, Overlaps: 2})

	var out bytes.Buffer
	require.NoError(t, r.Generate(&out))

	assert.Contains(t, out.String(), "**Quadtree Level:** 4")
	assert.Contains(t, out.String(), "**Candidate Pairs:** 20 (10.0 per frame)")
	assert.Contains(t, out.String(), "**Overlaps:** 6 (3.0 per frame)")
}
