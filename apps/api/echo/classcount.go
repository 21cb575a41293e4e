package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/classcount"
)

type classCountApi struct {
	svc      classcount.Service
	validate *validator.Validate
	loc      *time.Location
}

func registerClassCountAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classcount.Service, validate *validator.Validate, loc *time.Location) {
	api := classCountApi{svc: svc, validate: validate, loc: loc}

	cg := g.Group("/class-counts", jwt, staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/employee", api.retrieveByEmployeeAndDate)
	cg.GET("/filter", api.queryByMonth)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
}

type (
	// ClassCountRequest is a classcount.NewRecord whose date may be a plain calendar day.
	ClassCountRequest struct {
		classcount.NewRecord
		Date Date `json:"date"`
	}

	// ClassCountUpdateRequest is a classcount.UpdateRecord whose date may be a plain calendar day.
	ClassCountUpdateRequest struct {
		classcount.UpdateRecord
		Date *Date `json:"date"`
	}
)

// ownEmployeeID returns the employee a teacher is restricted to; admins are not restricted.
func ownEmployeeID(ctx echo.Context) (string, bool, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return "", false, nil
	}
	return claims.EmployeeID, true, nil
}

// checkOwner forbids teachers from touching the records of other employees.
func checkOwner(ctx echo.Context, employeeID string) error {
	own, restricted, err := ownEmployeeID(ctx)
	if err != nil {
		return err
	}
	if restricted && own != employeeID {
		return errHttpForbidden
	}
	return nil
}

func (api *classCountApi) create(ctx echo.Context) error {
	var data ClassCountRequest
	if err := bindJSON(ctx, &data, "ClassCountRequest"); err != nil {
		return err
	}
	nr := data.NewRecord
	nr.Date = data.Date.In(api.loc)

	// teachers report for themselves
	own, restricted, err := ownEmployeeID(ctx)
	if err != nil {
		return err
	}
	if restricted {
		if nr.EmployeeID == "" {
			nr.EmployeeID = own
		} else if nr.EmployeeID != own {
			return errHttpForbidden
		}
	}

	if err := nr.Validate(api.validate); err != nil {
		return err
	}
	r, err := api.svc.Create(ctx.Request().Context(), nr)
	if err != nil {
		return errors.Wrap(err, "creating class count")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *classCountApi) query(ctx echo.Context) error {
	filter := &classcount.QueryFilter{EmployeeID: ctx.QueryParam("employee_id")}
	own, restricted, err := ownEmployeeID(ctx)
	if err != nil {
		return err
	}
	if restricted {
		filter.EmployeeID = own
	}

	recs, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying class counts")
	}
	if recs == nil {
		recs = []classcount.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *classCountApi) retrieveByEmployeeAndDate(ctx echo.Context) error {
	employeeID := ctx.QueryParam("employee_id")
	if err := checkOwner(ctx, employeeID); err != nil {
		return err
	}
	date, err := dateParam(ctx, "date", api.loc)
	if err != nil {
		return err
	}

	r, err := api.svc.GetByEmployeeAndDate(ctx.Request().Context(), employeeID, date)
	if err != nil {
		return errors.Wrap(err, "getting class count by employee and date")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *classCountApi) queryByMonth(ctx echo.Context) error {
	month, err := intParam(ctx, "month")
	if err != nil {
		return err
	}
	year, err := intParam(ctx, "year")
	if err != nil {
		return err
	}

	employeeID := ctx.QueryParam("employee_id")
	own, restricted, err := ownEmployeeID(ctx)
	if err != nil {
		return err
	}
	if restricted {
		employeeID = own
	}

	recs, err := api.svc.QueryByMonth(ctx.Request().Context(), month, year, employeeID)
	if err != nil {
		return errors.Wrap(err, "querying class counts by month")
	}
	if recs == nil {
		recs = []classcount.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *classCountApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class count")
	}
	if err := checkOwner(ctx, r.EmployeeID); err != nil {
		if err == errHttpForbidden {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *classCountApi) update(ctx echo.Context) error {
	var data ClassCountUpdateRequest
	if err := bindJSON(ctx, &data, "ClassCountUpdateRequest"); err != nil {
		return err
	}
	ur := data.UpdateRecord
	if data.Date != nil && !data.Date.IsZero() {
		date := data.Date.In(api.loc)
		ur.Date = &date
	}
	if err := ur.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), ur)
	if err != nil {
		return errors.Wrap(err, "updating class count")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *classCountApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class count")
	}
	return ctx.NoContent(http.StatusNoContent)
}
