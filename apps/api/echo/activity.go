package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/gitlog"
)

const svgContentType = "image/svg+xml"

type activityApi struct {
	conf     *core.Config
	logger   core.Logger
	svc      *activity.Service
	fetcher  CommitFetcher
	validate *validator.Validate
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, deps *Deps) {
	api := activityApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		svc:      deps.ActivitySvc,
		fetcher:  deps.Fetcher,
		validate: deps.Validate,
	}

	ag := g.Group("/users/:id/activity", jwt, ctxUserOrMentorMiddleware(auth))
	ag.GET("", api.heatmap)
	ag.POST("", api.record, selfMiddleware())
	ag.POST("/sync", api.sync)
	g.GET("/users/:id/activity.svg", api.svg, jwt, ctxUserOrMentorMiddleware(auth))
}

type (
	HeatmapRequest struct {
		Today     string `query:"today" validate:"omitempty,isodate"`
		WeekStart string `query:"week_start" validate:"omitempty,oneof=monday sunday"`
	}

	RecordRequest struct {
		Date  activity.Date `json:"date"`
		Count *int          `json:"count"`
	}

	SyncRequest struct {
		// Emails are extra author emails counted as the user's, besides their account email.
		Emails []string `json:"emails" validate:"omitempty,dive,email"`
	}

	SyncResponse struct {
		Commits int `json:"commits"`
		Days    int `json:"days"`
	}
)

// Query converts the request into a heatmap query for userIDs.
func (hr *HeatmapRequest) Query(validate *validator.Validate, userIDs ...string) (activity.HeatmapQuery, error) {
	hr.Today = core.CleanString(hr.Today)
	hr.WeekStart = core.CleanString(hr.WeekStart, true /* lower */)
	if err := validate.Struct(hr); err != nil {
		return activity.HeatmapQuery{}, err
	}

	q := activity.HeatmapQuery{UserIDs: userIDs}
	if hr.Today != "" {
		q.Today = activity.MustParseDate(hr.Today) // validated above
	}
	if hr.WeekStart != "" {
		mondayFirst := hr.WeekStart == "monday"
		q.WeekStartsOnMonday = &mondayFirst
	}
	return q, nil
}

func (api *activityApi) buildHeatmap(ctx echo.Context) (activity.Heatmap, error) {
	usr, err := objectFromContext(ctx)
	if err != nil {
		return activity.Heatmap{}, err
	}
	var req HeatmapRequest
	if err = ctx.Bind(&req); err != nil {
		return activity.Heatmap{}, errors.Wrap(err, "binding to HeatmapRequest")
	}
	q, err := req.Query(api.validate, usr.ID)
	if err != nil {
		return activity.Heatmap{}, err
	}
	return api.svc.Heatmap(ctx.Request().Context(), q)
}

// Handlers

func (api *activityApi) heatmap(ctx echo.Context) error {
	hm, err := api.buildHeatmap(ctx)
	if err != nil {
		return errors.Wrap(err, "building heatmap")
	}
	return ctx.JSON(http.StatusOK, hm)
}

func (api *activityApi) svg(ctx echo.Context) error {
	hm, err := api.buildHeatmap(ctx)
	if err != nil {
		return errors.Wrap(err, "building heatmap")
	}

	usr, _ := objectFromContext(ctx)
	opts := activity.DefaultSVGOptions
	opts.Title = usr.Name

	var buf bytes.Buffer
	if err = activity.RenderSVG(&buf, hm, &opts); err != nil {
		return errors.Wrap(err, "rendering heatmap")
	}
	return ctx.Blob(http.StatusOK, svgContentType, buf.Bytes())
}

func (api *activityApi) record(ctx echo.Context) error {
	usr, err := objectFromContext(ctx)
	if err != nil {
		return err
	}

	var data RecordRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordRequest")
	}
	count := 1
	if data.Count != nil {
		count = *data.Count
	}

	sample, err := api.svc.Record(ctx.Request().Context(), usr.ID, data.Date, count)
	if err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, sample)
}

func (api *activityApi) sync(ctx echo.Context) error {
	usr, err := objectFromContext(ctx)
	if err != nil {
		return err
	}
	if usr.GithubURL == "" {
		return core.NewFieldValidationError("github_url", "this user has no repository")
	}

	var data SyncRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SyncRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	commits, err := api.fetcher.FetchAll(reqCtx, usr.GithubURL)
	if err != nil {
		return api.fetchError(err)
	}

	emails := append([]string{usr.Email}, data.Emails...)
	samples := gitlog.DailySamples(commits, api.conf.Activity.Location(), emails...)
	days, err := api.svc.Import(reqCtx, usr.ID, samples)
	if err != nil {
		return errors.Wrap(err, "importing commits")
	}
	return ctx.JSON(http.StatusOK, SyncResponse{Commits: len(commits), Days: days})
}

func (api *activityApi) fetchError(err error) error {
	return mapFetchError(api.logger, err)
}

// mapFetchError turns bad repository urls into validation errors and anything else into a 502.
func mapFetchError(logger core.Logger, err error) error {
	switch cause := errors.Cause(err); cause {
	case gitlog.ErrNoRepository, gitlog.ErrInvalidRepoURL:
		return core.NewFieldValidationError("github_url", cause.Error())
	}
	logger.Warn("fetching repository history", err)
	return echo.NewHTTPError(http.StatusBadGateway, "could not read repository history").SetInternal(err)
}
