package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/ecs"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Walls    int
	Level    int
	Workers  int

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	Collisions     CollisionTotals
	BulletsSpent   int
	ItemsTaken     int
	Systems        []ecs.SystemStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
	StdDev  time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	xs := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		xs[i] = float64(sample)
	}
	slices.Sort(xs)

	s.Min = time.Duration(xs[0])
	s.Max = time.Duration(xs[len(xs)-1])

	mean, std := stat.MeanStdDev(xs, nil)
	s.Avg = time.Duration(mean)
	if len(xs) > 1 {
		s.StdDev = time.Duration(std)
	}

	s.P50 = time.Duration(stat.Quantile(0.50, stat.Empirical, xs, nil))
	s.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, xs, nil))
	s.P99 = time.Duration(stat.Quantile(0.99, stat.Empirical, xs, nil))
}

// CollisionTotals sums FrameStats over the whole run.
type CollisionTotals struct {
	Frames     int64
	Candidates int64
	Overlaps   int64
	Triggers   int64
	Contacts   int64
	Responses  int64
	Skipped    int64
	Batches    int64
}

func (t *CollisionTotals) Add(s collision.FrameStats) {
	t.Frames++
	t.Candidates += int64(s.Candidates)
	t.Overlaps += int64(s.Overlaps)
	t.Triggers += int64(s.Triggers)
	t.Contacts += int64(s.Contacts)
	t.Responses += int64(s.Responses)
	t.Skipped += int64(s.Skipped)
	t.Batches += int64(s.Batches)
}

// frameRecord is one row of the per-frame CSV.
type frameRecord struct {
	collision.FrameStats
	UpdateMicros int64 `csv:"update_us"`
}

func writeFrames(path string, frames []frameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&frames, f); err != nil {
		return fmt.Errorf("writing frame stats: %w", err)
	}
	return nil
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Collision Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Moving Entities:** {{.Entities}}
- **Inner Walls:** {{.Walls}}
- **Quadtree Level:** {{.Level}}
- **Narrow Phase Workers:** {{.Workers}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}} (stddev {{.UpdateTime.StdDev}})
  - **Min:** {{.UpdateTime.Min}}
  - **P50:** {{.UpdateTime.P50}}
  - **P95:** {{.UpdateTime.P95}}
  - **P99:** {{.UpdateTime.P99}}
  - **Max:** {{.UpdateTime.Max}}

## Systems
{{range .Systems}}- **{{.Name}}:** avg {{.AvgDuration}}, max {{.MaxDuration}} over {{.ExecutionCount}} runs
{{end}}
## Collisions
- **Candidate Pairs:** {{.Collisions.Candidates}} ({{per .Collisions.Candidates .Collisions.Frames}} per frame)
- **Overlaps:** {{.Collisions.Overlaps}} ({{per .Collisions.Overlaps .Collisions.Frames}} per frame)
- **Trigger Events:** {{.Collisions.Triggers}}
- **Contacts:** {{.Collisions.Contacts}}
- **Responses Applied:** {{.Collisions.Responses}}
- **Skipped Entities:** {{.Collisions.Skipped}}
- **Parallel Batches:** {{.Collisions.Batches}}
- **Bullets Spent:** {{.BulletsSpent}}
- **Items Taken:** {{.ItemsTaken}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"per": func(total, frames int64) string {
			if frames == 0 {
				return "0"
			}
			return fmt.Sprintf("%.1f", float64(total)/float64(frames))
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
