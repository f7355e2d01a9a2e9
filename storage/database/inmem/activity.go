package inmemdb

import (
	"context"
	"sort"

	"github.com/igortacu/summer-hackathon-sub000/core/activity"
)

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) IncrementSample(_ context.Context, userID string, date activity.Date, by int) (activity.Sample, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := sampleKey{userID: userID, date: date}
	repo.db.table[key] += by
	return activity.Sample{Date: date, Count: repo.db.table[key]}, nil
}

func (repo *activityRepository) UpsertSamples(_ context.Context, userID string, samples []activity.Sample) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range samples {
		repo.db.table[sampleKey{userID: userID, date: s.Date}] = s.Count
	}
	return nil
}

func (repo *activityRepository) QuerySamples(_ context.Context, userIDs []string, start, end activity.Date) ([]activity.Sample, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	counts := make(map[activity.Date]int)
	for key, n := range repo.db.table {
		if !wanted[key.userID] || key.date.Before(start) || key.date.After(end) {
			continue
		}
		counts[key.date] += n
	}

	samples := make([]activity.Sample, 0, len(counts))
	for d, n := range counts {
		samples = append(samples, activity.Sample{Date: d, Count: n})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })
	return samples, nil
}

func (repo *activityRepository) DeleteSamples(_ context.Context, userIDs ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doomed := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		doomed[id] = true
	}
	for key := range repo.db.table {
		if doomed[key.userID] {
			delete(repo.db.table, key)
		}
	}
	return nil
}
