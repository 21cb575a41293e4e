package echoapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/trezcool/tuition/core"
)

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

// staffMiddleware lets admins and teachers linked to an employee through.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || (claims.IsTeacher && claims.EmployeeID != "") {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// loginRateLimiter throttles requests per client IP; rate is formatted like "10-M".
func loginRateLimiter(rate string, logger core.Logger) echo.MiddlewareFunc {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing login rate %q: %v", rate, err), err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, r)
	return echo.WrapMiddleware(stdlib.NewMiddleware(instance).Handler)
}
