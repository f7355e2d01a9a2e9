package sqlxrepos

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
)

type activityRepository struct {
	db core.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db core.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) IncrementSample(ctx context.Context, userID string, date activity.Date, by int) (activity.Sample, error) {
	var s activity.Sample
	q := `INSERT INTO activity_sample (user_id, day, count) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET count = activity_sample.count + EXCLUDED.count
		RETURNING day AS date, count`
	if err := repo.db.GetContext(ctx, &s, q, userID, date, by); err != nil {
		return activity.Sample{}, errors.Wrap(err, "incrementing sample")
	}
	return s, nil
}

func (repo activityRepository) UpsertSamples(ctx context.Context, userID string, samples []activity.Sample) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO activity_sample (user_id, day, count) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET count = EXCLUDED.count`)
	if err != nil {
		return errors.Wrap(err, "preparing upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range samples {
		if _, err = stmt.ExecContext(ctx, userID, s.Date, s.Count); err != nil {
			return errors.Wrapf(err, "upserting sample %s", s.Date)
		}
	}
	return errors.Wrap(tx.Commit(), "committing samples")
}

func (repo activityRepository) QuerySamples(ctx context.Context, userIDs []string, start, end activity.Date) ([]activity.Sample, error) {
	samples := make([]activity.Sample, 0)
	q := `SELECT day AS date, SUM(count) AS count FROM activity_sample
		WHERE user_id::text = ANY($1) AND day BETWEEN $2 AND $3
		GROUP BY day ORDER BY day`
	if err := repo.db.SelectContext(ctx, &samples, q, pq.Array(userIDs), start, end); err != nil {
		return nil, errors.Wrap(err, "querying samples")
	}
	return samples, nil
}

func (repo activityRepository) DeleteSamples(ctx context.Context, userIDs ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM activity_sample WHERE user_id::text = ANY($1)`, pq.Array(userIDs)); err != nil {
		return errors.Wrap(err, "deleting samples")
	}
	return nil
}
