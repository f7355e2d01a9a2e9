package activity

import (
	"math/rand"
	"time"
)

const (
	DefaultMaxCount = 10
	DefaultDensity  = 60 // percent of days that get a sample
)

// Sample is the activity count of one day. Days without a sample count as 0.
type Sample struct {
	Date  Date `json:"date"`
	Count int  `json:"count"`
}

// Source provides the randomness for demo series. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Generator produces sparse demo series.
// A nil Source falls back to one seeded from the clock.
type Generator struct {
	Source   Source
	MaxCount int
	Density  int
}

// NewGenerator returns a Generator whose output is fully determined by seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Source:   rand.New(rand.NewSource(seed)),
		MaxCount: DefaultMaxCount,
		Density:  DefaultDensity,
	}
}

// GenerateSeries emits at most one sample per date in [start, end], ascending, each with a count in [1, MaxCount].
// start after end yields an empty series.
func (g *Generator) GenerateSeries(start, end Date) []Sample {
	if start.After(end) {
		return []Sample{}
	}

	maxCount := g.MaxCount
	if maxCount < 1 {
		maxCount = DefaultMaxCount
	}
	density := g.Density
	switch {
	case density <= 0:
		density = DefaultDensity
	case density > 100:
		density = 100
	}

	src := g.Source
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	samples := make([]Sample, 0, start.DaysUntil(end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		if src.Intn(100) >= density {
			continue
		}
		samples = append(samples, Sample{Date: d, Count: 1 + src.Intn(maxCount)})
	}
	return samples
}

// GenerateSeries is a shortcut for a default Generator over src.
func GenerateSeries(src Source, start, end Date) []Sample {
	g := Generator{Source: src}
	return g.GenerateSeries(start, end)
}
