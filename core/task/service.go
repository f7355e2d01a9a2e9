// Package task keeps the to-do items of PBL teams.
package task

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
)

var (
	// errors
	ErrNotFound  = errors.New("task not found")
	ErrDuplicate = errors.New("an identical task already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckHashUniqueness(ctx context.Context, hash string, excludedIDs ...string) error
		CreateTask(ctx context.Context, t Task) (Task, error)
		// QueryTasks applies AND operation on available QueryFilter fields; a nil filter returns every task.
		QueryTasks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) error
		DeleteTasksByAssignee(ctx context.Context, userIDs ...string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, hash string, excludedIDs ...string) error {
	if err := svc.repo.CheckHashUniqueness(ctx, hash, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrDuplicate {
			return core.NewValidationError(ErrDuplicate)
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	nt.Clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Task{}, err
	}
	due, err := activity.ParseDate(nt.DueDate)
	if err != nil {
		return Task{}, core.NewFieldValidationError("due_date", err.Error())
	}

	now := NowFunc().UTC()
	t := Task{
		Title:       nt.Title,
		Description: nt.Description,
		AssignedTo:  nt.AssignedTo,
		PBLGroup:    nt.PBLGroup,
		Status:      nt.Status,
		Priority:    nt.Priority,
		DueDate:     due,
		CreatedBy:   nt.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Hash = t.ContentHash()
	if err = svc.checkUniqueness(ctx, t.Hash); err != nil {
		return Task{}, err
	}
	return svc.repo.CreateTask(ctx, t)
}

// Query returns the tasks matching filter, soonest due first unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Task, error) {
	filter.Clean()
	if err := svc.validate.Struct(filter); err != nil {
		return nil, err
	}
	return svc.repo.QueryTasks(ctx, &filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTask) (Task, error) {
	orig, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	ut.Merge(orig)
	if err = svc.validate.Struct(ut); err != nil {
		return Task{}, err
	}
	due, err := activity.ParseDate(ut.DueDate)
	if err != nil {
		return Task{}, core.NewFieldValidationError("due_date", err.Error())
	}

	t := Task{
		ID:          orig.ID,
		Title:       ut.Title,
		Description: *ut.Description,
		AssignedTo:  ut.AssignedTo,
		PBLGroup:    ut.PBLGroup,
		Status:      ut.Status,
		Priority:    ut.Priority,
		DueDate:     due,
		CreatedBy:   orig.CreatedBy,
		CreatedAt:   orig.CreatedAt,
		UpdatedAt:   NowFunc().UTC(),
	}
	t.Hash = t.ContentHash()
	if err = svc.checkUniqueness(ctx, t.Hash, orig.ID); err != nil {
		return Task{}, err
	}
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}

// ClearAssigned deletes every task assigned to the given users.
func (svc *Service) ClearAssigned(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return svc.repo.DeleteTasksByAssignee(ctx, userIDs...)
}
