package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/tuition/core/payroll"
)

type payrollApi struct {
	svc payroll.Service
	loc *time.Location
}

func registerPayrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc payroll.Service, loc *time.Location) {
	api := payrollApi{svc: svc, loc: loc}

	pg := g.Group("/payroll", jwt, adminMiddleware())
	pg.GET("/monthly", api.monthly)
	pg.GET("/current-month", api.currentMonth)
}

func (api *payrollApi) monthly(ctx echo.Context) error {
	date, err := dateParam(ctx, "date", api.loc)
	if err != nil {
		return err
	}
	return api.compute(ctx, date)
}

func (api *payrollApi) currentMonth(ctx echo.Context) error {
	return api.compute(ctx, time.Now().In(api.loc))
}

// compute returns aggregation failures as is, so that they are not mistaken for other server errors.
func (api *payrollApi) compute(ctx echo.Context, ref time.Time) error {
	summaries, err := api.svc.ComputeMonthly(ctx.Request().Context(), ref)
	if err != nil {
		return err
	}
	if summaries == nil {
		summaries = []payroll.TeacherSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}
