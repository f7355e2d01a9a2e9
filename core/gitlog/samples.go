package gitlog

import (
	"sort"
	"strings"
	"time"

	"github.com/igortacu/summer-hackathon-sub000/core/activity"
)

// DailySamples counts commits per author day in loc, ascending by date.
// When emails are given only commits authored by one of them count.
func DailySamples(commits []Commit, loc *time.Location, emails ...string) []activity.Sample {
	if loc == nil {
		loc = time.UTC
	}
	allowed := make(map[string]bool, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = true
		}
	}

	counts := make(map[activity.Date]int)
	for _, c := range commits {
		if c.AuthorDate.IsZero() {
			continue
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(c.Author.Email)] {
			continue
		}
		counts[activity.DateOf(c.AuthorDate.In(loc))]++
	}

	samples := make([]activity.Sample, 0, len(counts))
	for d, n := range counts {
		samples = append(samples, activity.Sample{Date: d, Count: n})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })
	return samples
}

// Dedupe drops repeated hashes, keeping the first occurrence.
func Dedupe(commits []Commit) []Commit {
	seen := make(map[string]bool, len(commits))
	out := make([]Commit, 0, len(commits))
	for _, c := range commits {
		if seen[c.Hash] {
			continue
		}
		seen[c.Hash] = true
		out = append(out, c)
	}
	return out
}
