package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/gitlog"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

const (
	defaultCommitsLimit = 100
	maxCommitsLimit     = 1000
)

type groupApi struct {
	logger   core.Logger
	users    *user.Service
	activity *activity.Service
	fetcher  CommitFetcher
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps *Deps) {
	api := groupApi{
		logger:   deps.Logger,
		users:    deps.UserSvc,
		activity: deps.ActivitySvc,
		fetcher:  deps.Fetcher,
		validate: deps.Validate,
	}

	gg := g.Group("/groups/:group", jwt, groupAccessMiddleware(auth))
	gg.GET("/activity", api.heatmap)
	gg.GET("/commits", api.commits)
}

type (
	Member struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ProjectName string `json:"project_name"`
	}

	GroupHeatmapResponse struct {
		Group   string           `json:"group"`
		Members []Member         `json:"members"`
		Heatmap activity.Heatmap `json:"heatmap"`
	}

	GroupCommitsResponse struct {
		Group   string          `json:"group"`
		Total   int             `json:"total"`
		Commits []gitlog.Commit `json:"commits"`
	}
)

func (api *groupApi) members(ctx echo.Context) (string, []user.User, error) {
	group := ctx.Param("group")
	members, err := api.users.GroupMembers(ctx.Request().Context(), group)
	if err != nil {
		return "", nil, errors.Wrap(err, "querying group members")
	}
	if len(members) == 0 {
		return "", nil, errHttpNotFound
	}
	return group, members, nil
}

// Handlers

func (api *groupApi) heatmap(ctx echo.Context) error {
	group, members, err := api.members(ctx)
	if err != nil {
		return err
	}

	var req HeatmapRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to HeatmapRequest")
	}
	resp := GroupHeatmapResponse{Group: group, Members: make([]Member, len(members))}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
		resp.Members[i] = Member{ID: m.ID, Name: m.Name, ProjectName: m.ProjectName}
	}

	q, err := req.Query(api.validate, ids...)
	if err != nil {
		return err
	}
	if resp.Heatmap, err = api.activity.Heatmap(ctx.Request().Context(), q); err != nil {
		return errors.Wrap(err, "building group heatmap")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *groupApi) commits(ctx echo.Context) error {
	group, members, err := api.members(ctx)
	if err != nil {
		return err
	}

	limit := defaultCommitsLimit
	if val := ctx.QueryParam("limit"); val != "" {
		if limit, err = strconv.Atoi(val); err != nil || limit < 1 {
			return core.NewFieldValidationError("limit", "must be a positive integer")
		}
		if limit > maxCommitsLimit {
			limit = maxCommitsLimit
		}
	}

	urls := make([]string, 0, len(members))
	for _, m := range members {
		urls = append(urls, m.GithubURL)
	}
	commits, err := api.fetcher.FetchAll(ctx.Request().Context(), urls...)
	if err != nil {
		return mapFetchError(api.logger, err)
	}

	resp := GroupCommitsResponse{Group: group, Total: len(commits), Commits: commits}
	if len(resp.Commits) > limit {
		resp.Commits = resp.Commits[:limit]
	}
	if resp.Commits == nil {
		resp.Commits = []gitlog.Commit{}
	}
	return ctx.JSON(http.StatusOK, resp)
}
