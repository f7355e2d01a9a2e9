package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(NewDB())
	ctx := context.Background()
	now := time.Now().UTC()

	ana, err := repo.CreateUser(ctx, user.User{Name: "Ana", Email: "ana@test.md", Role: user.RoleStudent, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.NotEmpty(t, ana.ID)
	ion, err := repo.CreateUser(ctx, user.User{Name: "Ion", Email: "ion@test.md", Role: user.RoleMentor, CreatedAt: now})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, user.User{Email: "ana@test.md"})
	assert.Equal(t, user.ErrEmailExists, err)

	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "ana@test.md"))
	assert.NoError(t, repo.CheckEmailUniqueness(ctx, "ana@test.md", ana.ID))
	assert.NoError(t, repo.CheckEmailUniqueness(ctx, "dan@test.md"))

	got, err := repo.GetUserByEmail(ctx, "ion@test.md")
	require.NoError(t, err)
	assert.Equal(t, ion, got)

	users, err := repo.QueryUsers(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ion.ID, users[0].ID)

	users, err = repo.QueryUsers(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, users[0].ID)

	users, err = repo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleMentor}, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, ion.ID, users[0].ID)

	// an update without a password keeps the stored hash
	require.NoError(t, ana.SetPassword("Sup3r-s3cret!pbl"))
	_, err = repo.UpdateUser(ctx, ana)
	require.NoError(t, err)
	ana.PasswordHash = nil
	ana.Name = "Ana P."
	updated, err := repo.UpdateUser(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, "Ana P.", updated.Name)
	assert.NoError(t, updated.CheckPassword("Sup3r-s3cret!pbl"))

	require.NoError(t, repo.SetLastLogin(ctx, ana.ID, now))
	got, err = repo.GetUserByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, now, got.LastLogin)

	require.NoError(t, repo.DeleteUsersByID(ctx, ana.ID, "nope"))
	_, err = repo.GetUserByID(ctx, ana.ID)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.UpdateUser(ctx, ana)
	assert.Equal(t, user.ErrNotFound, err)
	assert.Equal(t, user.ErrNotFound, repo.SetLastLogin(ctx, ana.ID, now))
}

func TestActivityRepository(t *testing.T) {
	repo := NewActivityRepository(NewDB())
	ctx := context.Background()
	d1, d2, d3 := activity.MustParseDate("2024-03-01"), activity.MustParseDate("2024-03-02"), activity.MustParseDate("2024-03-03")

	s, err := repo.IncrementSample(ctx, "u1", d1, 2)
	require.NoError(t, err)
	assert.Equal(t, activity.Sample{Date: d1, Count: 2}, s)
	s, err = repo.IncrementSample(ctx, "u1", d1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)

	require.NoError(t, repo.UpsertSamples(ctx, "u1", []activity.Sample{{Date: d1, Count: 1}, {Date: d3, Count: 4}}))
	require.NoError(t, repo.UpsertSamples(ctx, "u2", []activity.Sample{{Date: d2, Count: 6}, {Date: d3, Count: 1}}))

	got, err := repo.QuerySamples(ctx, []string{"u1", "u2"}, d1, d3)
	require.NoError(t, err)
	assert.Equal(t, []activity.Sample{{Date: d1, Count: 1}, {Date: d2, Count: 6}, {Date: d3, Count: 5}}, got)

	got, err = repo.QuerySamples(ctx, []string{"u1"}, d2, d3)
	require.NoError(t, err)
	assert.Equal(t, []activity.Sample{{Date: d3, Count: 4}}, got)

	require.NoError(t, repo.DeleteSamples(ctx, "u1"))
	got, err = repo.QuerySamples(ctx, []string{"u1", "u2"}, d1, d3)
	require.NoError(t, err)
	assert.Equal(t, []activity.Sample{{Date: d2, Count: 6}, {Date: d3, Count: 1}}, got)
}

func TestTaskRepository(t *testing.T) {
	repo := NewTaskRepository(NewDB())
	ctx := context.Background()
	now := time.Now().UTC()

	newTask := func(title, assignee, due string) task.Task {
		tsk := task.Task{
			Title:      title,
			AssignedTo: assignee,
			Status:     task.StatusTodo,
			Priority:   task.PriorityMedium,
			DueDate:    activity.MustParseDate(due),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		tsk.Hash = tsk.ContentHash()
		return tsk
	}

	report, err := repo.CreateTask(ctx, newTask("Report", "u1", "2024-03-20"))
	require.NoError(t, err)
	require.NotEmpty(t, report.ID)
	demo, err := repo.CreateTask(ctx, newTask("Demo", "u2", "2024-03-12"))
	require.NoError(t, err)

	_, err = repo.CreateTask(ctx, newTask("Report", "u1", "2024-04-01"))
	assert.Equal(t, task.ErrDuplicate, err)
	assert.Equal(t, task.ErrDuplicate, repo.CheckHashUniqueness(ctx, report.Hash))
	assert.NoError(t, repo.CheckHashUniqueness(ctx, report.Hash, report.ID))

	tasks, err := repo.QueryTasks(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, demo.ID, tasks[0].ID)

	tasks, err = repo.QueryTasks(ctx, &task.QueryFilter{AssignedTo: "u1"}, []core.DBOrdering{{Field: "title"}})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, report.ID, tasks[0].ID)

	// taking another task's content is refused
	clash := report
	clash.Title, clash.AssignedTo = demo.Title, demo.AssignedTo
	clash.Hash = clash.ContentHash()
	_, err = repo.UpdateTask(ctx, clash)
	assert.Equal(t, task.ErrDuplicate, err)

	report.Status = task.StatusDone
	report.Hash = report.ContentHash()
	updated, err := repo.UpdateTask(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status)

	require.NoError(t, repo.DeleteTasksByAssignee(ctx, "u2"))
	_, err = repo.GetTaskByID(ctx, demo.ID)
	assert.Equal(t, task.ErrNotFound, err)

	require.NoError(t, repo.DeleteTasksByID(ctx, report.ID))
	_, err = repo.UpdateTask(ctx, report)
	assert.Equal(t, task.ErrNotFound, err)
}
