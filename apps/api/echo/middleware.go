package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core/account"
)

const contextObjectKey = "object"

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware lets admins and instructors through.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsInstructor {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// ctxAccountOrStaffMiddleware loads the ":id" account into the context for
// the account itself or a staff member, and hides it from anyone else.
func ctxAccountOrStaffMiddleware(auth *authenticator, adminOnly bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxAcc, err := auth.contextAccount(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context account")
			}

			staff := ctxAcc.IsAdmin() || (!adminOnly && ctxAcc.IsInstructor())
			if ctx.Param("id") == ctxAcc.ID || staff {
				if acc, err := auth.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set(contextObjectKey, acc)
					return next(ctx)
				} else if errors.Cause(err) != account.ErrNotFound {
					return errors.Wrap(err, "finding account by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

func contextObject(ctx echo.Context) (account.Account, error) {
	acc, ok := ctx.Get(contextObjectKey).(account.Account)
	if !ok {
		return account.Account{}, errors.Wrap(errAccNotFoundInCtx, "retrieving object from context")
	}
	return acc, nil
}
