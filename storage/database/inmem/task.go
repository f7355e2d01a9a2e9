package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) hashTaken(hash string, excludedIDs []string) bool {
	for _, t := range repo.db.table {
		if t.Hash == hash && !isExcluded(t.ID, excludedIDs) {
			return true
		}
	}
	return false
}

func (repo *taskRepository) CheckHashUniqueness(_ context.Context, hash string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.hashTaken(hash, excludedIDs) {
		return task.ErrDuplicate
	}
	return nil
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.hashTaken(t.Hash, nil) {
		return task.Task{}, task.ErrDuplicate
	}
	t.ID = uuid.New().String()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter, ordering []core.DBOrdering) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		if filter.Match(*t) {
			tasks = append(tasks, *t)
		}
	}
	sortTasks(tasks, ordering)
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	if repo.hashTaken(t.Hash, []string{t.ID}) {
		return task.Task{}, task.ErrDuplicate
	}
	// only save mutable fields
	orig.Title = t.Title
	orig.Description = t.Description
	orig.AssignedTo = t.AssignedTo
	orig.PBLGroup = t.PBLGroup
	orig.Status = t.Status
	orig.Priority = t.Priority
	orig.DueDate = t.DueDate
	orig.Hash = t.Hash
	orig.UpdatedAt = t.UpdatedAt
	return *orig, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *taskRepository) DeleteTasksByAssignee(_ context.Context, userIDs ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for id, t := range repo.db.table {
		if isExcluded(t.AssignedTo, userIDs) {
			delete(repo.db.table, id)
		}
	}
	return nil
}

// sortTasks mirrors the SQL repository: orderings on known fields, soonest due first by default.
func sortTasks(tasks []task.Task, ordering []core.DBOrdering) {
	less := func(a, b task.Task, field string) (bool, bool) {
		switch field {
		case "title":
			return a.Title < b.Title, a.Title == b.Title
		case "status":
			return a.Status < b.Status, a.Status == b.Status
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		default:
			return a.DueDate.Before(b.DueDate), a.DueDate.Equal(b.DueDate)
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "due_date", Ascending: true}, {Field: "created_at", Ascending: true}, {Field: "title", Ascending: true}}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		for _, ord := range ordering {
			lt, eq := less(tasks[i], tasks[j], ord.Field)
			if eq {
				continue
			}
			if ord.Ascending {
				return lt
			}
			return !lt
		}
		return false
	})
}
