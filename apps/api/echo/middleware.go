package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
)

// roleMiddleware lets through users whose role ranks at least `role`.
func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if user.RolePriority(claims.Role) >= user.RolePriority(role) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func mentorMiddleware() echo.MiddlewareFunc { return roleMiddleware(user.RoleMentor) }
func adminMiddleware() echo.MiddlewareFunc  { return roleMiddleware(user.RoleAdmin) }

// ctxUserOrMentorMiddleware loads the `:id` user into the context as "object"
// when the caller is that user or a mentor. Others get a 404.
func ctxUserOrMentorMiddleware(auth *authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := auth.contextUser(ctx)
			if err != nil {
				return err
			}

			id := ctx.Param("id")
			if id == ctxUsr.ID {
				ctx.Set(objContextKey, ctxUsr)
				return next(ctx)
			}
			if ctxUsr.IsMentor() {
				if usr, err := auth.svc.GetByID(ctx.Request().Context(), id); err == nil {
					ctx.Set(objContextKey, usr)
					return next(ctx)
				} else if errors.Cause(err) != user.ErrNotFound {
					return errors.Wrap(err, "finding user by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

// selfMiddleware only lets users act on their own `:id`.
func selfMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if ctx.Param("id") != claims.Subject {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// groupAccessMiddleware lets mentors and members of the `:group` PBL group through.
func groupAccessMiddleware(auth *authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := auth.contextUser(ctx)
			if err != nil {
				return err
			}
			if ctxUsr.IsMentor() || ctxUsr.InGroup(ctx.Param("group")) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// taskAccessMiddleware loads the `:id` task into the context as "object"
// when the caller may see it. Others get a 404.
func taskAccessMiddleware(auth *authenticator, svc *task.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := auth.contextUser(ctx)
			if err != nil {
				return err
			}

			t, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == task.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding task by ID")
			}
			if !t.VisibleTo(ctxUsr) {
				return errHttpNotFound
			}
			ctx.Set(objContextKey, t)
			return next(ctx)
		}
	}
}

func objectFromContext(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(objContextKey).(user.User)
	if !ok {
		return user.User{}, errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return usr, nil
}
