package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
)

const taskColumns = `id, title, description, assigned_to, pbl_group, status, priority, due_date, hash, created_by, created_at, updated_at`

var taskOrderings = map[string]string{
	"title":      "title",
	"status":     "status",
	"due_date":   "due_date",
	"created_at": "created_at",
}

type taskRow struct {
	ID          string        `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	AssignedTo  string        `db:"assigned_to"`
	PBLGroup    string        `db:"pbl_group"`
	Status      string        `db:"status"`
	Priority    string        `db:"priority"`
	DueDate     activity.Date `db:"due_date"`
	Hash        string        `db:"hash"`
	CreatedBy   null.String   `db:"created_by"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func toTaskRow(t task.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  t.AssignedTo,
		PBLGroup:    t.PBLGroup,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Hash:        t.Hash,
		CreatedBy:   null.NewString(t.CreatedBy, t.CreatedBy != ""),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (row taskRow) task() task.Task {
	return task.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		AssignedTo:  row.AssignedTo,
		PBLGroup:    row.PBLGroup,
		Status:      row.Status,
		Priority:    row.Priority,
		DueDate:     row.DueDate,
		Hash:        row.Hash,
		CreatedBy:   row.CreatedBy.String,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type taskRepository struct {
	exec core.DBExecutor
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(exec core.DBExecutor) *taskRepository {
	return &taskRepository{exec: exec}
}

// trapTaskErr maps "no rows" to task.ErrNotFound and hash collisions to task.ErrDuplicate.
func trapTaskErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return task.ErrNotFound
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return task.ErrDuplicate
	}
	return errors.Wrap(err, msg)
}

func (repo taskRepository) CheckHashUniqueness(ctx context.Context, hash string, excludedIDs ...string) error {
	if excludedIDs == nil {
		excludedIDs = []string{}
	}
	var found bool
	q := `SELECT EXISTS (SELECT 1 FROM task WHERE hash = $1 AND NOT (id::text = ANY($2)))`
	if err := repo.exec.GetContext(ctx, &found, q, hash, pq.Array(excludedIDs)); err != nil {
		return errors.Wrap(err, "checking task uniqueness")
	}
	if found {
		return task.ErrDuplicate
	}
	return nil
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	q := `INSERT INTO task (` + taskColumns + `) VALUES (:id, :title, :description, :assigned_to, :pbl_group, :status, :priority, :due_date, :hash, :created_by, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, q, toTaskRow(t)); err != nil {
		return task.Task{}, trapTaskErr(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) QueryTasks(ctx context.Context, filter *task.QueryFilter, ordering []core.DBOrdering) ([]task.Task, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter != nil {
		if filter.PBLGroup != "" {
			conds = append(conds, "pbl_group = "+arg(filter.PBLGroup))
		}
		if filter.AssignedTo != "" {
			conds = append(conds, "assigned_to::text = "+arg(filter.AssignedTo))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(filter.Status))
		}
		if filter.Priority != "" {
			conds = append(conds, "priority = "+arg(filter.Priority))
		}
		if filter.DueBy != "" {
			conds = append(conds, "due_date <= "+arg(filter.DueBy))
		}
	}

	q := `SELECT ` + taskColumns + ` FROM task`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + core.OrderByClause(ordering, taskOrderings, "due_date ASC, created_at ASC, title ASC")

	rows := make([]taskRow, 0)
	if err := repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.task())
	}
	return tasks, nil
}

func (repo taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}
	var row taskRow
	q := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		return task.Task{}, trapTaskErr(err, "finding task by ID")
	}
	return row.task(), nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	q := `UPDATE task SET title = :title, description = :description, assigned_to = :assigned_to, pbl_group = :pbl_group,
		status = :status, priority = :priority, due_date = :due_date, hash = :hash, updated_at = :updated_at WHERE id = :id`
	res, err := repo.exec.NamedExecContext(ctx, q, toTaskRow(t))
	if err != nil {
		return task.Task{}, trapTaskErr(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTaskByID(ctx, t.ID)
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.exec.ExecContext(ctx, `DELETE FROM task WHERE id::text = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}

func (repo taskRepository) DeleteTasksByAssignee(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	if _, err := repo.exec.ExecContext(ctx, `DELETE FROM task WHERE assigned_to::text = ANY($1)`, pq.Array(userIDs)); err != nil {
		return errors.Wrap(err, "deleting assigned tasks")
	}
	return nil
}
