package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

var (
	errTaskNotFoundInCtx = errors.New("task object not found in echo.Context")
	errUnknownAssignee   = "unknown user"
)

type taskApi struct {
	auth  *authenticator
	svc   *task.Service
	users *user.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps *Deps) {
	api := taskApi{
		auth:  auth,
		svc:   deps.TaskSvc,
		users: deps.UserSvc,
	}

	tg := g.Group("/tasks", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)

	// detail endpoints
	dg := tg.Group("/:id", taskAccessMiddleware(auth, deps.TaskSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// assignee loads the user a task goes to and checks ctxUsr may hand it to them:
// mentors assign anyone, students themselves and their group mates.
func (api *taskApi) assignee(ctx echo.Context, ctxUsr user.User, id string) (user.User, error) {
	usr, err := api.users.GetByID(ctx.Request().Context(), core.CleanString(id))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewFieldValidationError("assigned_to", errUnknownAssignee)
		}
		return user.User{}, errors.Wrap(err, "finding assignee")
	}
	if !(ctxUsr.IsMentor() || usr.ID == ctxUsr.ID || ctxUsr.InGroup(usr.PBLGroup)) {
		return user.User{}, errHttpForbidden
	}
	return usr, nil
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if core.CleanString(data.AssignedTo) == "" {
		data.AssignedTo = ctxUsr.ID
	}
	assignee, err := api.assignee(ctx, ctxUsr, data.AssignedTo)
	if err != nil {
		return err
	}
	data.AssignedTo = assignee.ID
	data.PBLGroup = assignee.PBLGroup
	data.CreatedBy = ctxUsr.ID

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) query(ctx echo.Context) error {
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	var filter task.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}
	// students only see their group's tasks, or their own without a group
	if !ctxUsr.IsMentor() {
		group := core.CleanString(filter.PBLGroup)
		switch {
		case ctxUsr.PBLGroup == "":
			filter.AssignedTo = ctxUsr.ID
		case group != "" && group != ctxUsr.PBLGroup:
			return errHttpForbidden
		default:
			filter.PBLGroup = ctxUsr.PBLGroup
		}
	}
	var ordering Ordering
	ordering.Bind(ctx)

	tasks, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, err := taskFromContext(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	t, err := taskFromContext(ctx)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if id := core.CleanString(data.AssignedTo); id != "" && id != t.AssignedTo {
		ctxUsr, err := api.auth.contextUser(ctx)
		if err != nil {
			return err
		}
		assignee, err := api.assignee(ctx, ctxUsr, id)
		if err != nil {
			return err
		}
		data.AssignedTo = assignee.ID
		data.PBLGroup = assignee.PBLGroup
	}

	t, err = api.svc.Update(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	t, err := taskFromContext(ctx)
	if err != nil {
		return err
	}

	// only mentors and the creator delete a task
	ctxUsr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	if !ctxUsr.IsMentor() && t.CreatedBy != ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func taskFromContext(ctx echo.Context) (task.Task, error) {
	t, ok := ctx.Get(objContextKey).(task.Task)
	if !ok {
		return task.Task{}, errors.Wrap(errTaskNotFoundInCtx, "retrieving object from context")
	}
	return t, nil
}
