package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/employee"
)

type employeeApi struct {
	svc      employee.Service
	validate *validator.Validate
	loc      *time.Location
}

func registerEmployeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc employee.Service, validate *validator.Validate, loc *time.Location) {
	api := employeeApi{svc: svc, validate: validate, loc: loc}

	eg := g.Group("/employees", jwt, adminMiddleware())
	eg.POST("", api.create)
	eg.GET("", api.query)
	eg.DELETE("", api.destroyMultiple)
	eg.GET("/per-class-teachers", api.queryPerClassTeachers)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

// EmployeeRequest is an employee.NewEmployee whose joining date may be a plain calendar day.
type EmployeeRequest struct {
	employee.NewEmployee
	JoiningDate Date `json:"joining_date"`
}

func (api *employeeApi) bind(ctx echo.Context) (employee.NewEmployee, error) {
	var data EmployeeRequest
	if err := bindJSON(ctx, &data, "EmployeeRequest"); err != nil {
		return employee.NewEmployee{}, err
	}
	ne := data.NewEmployee
	ne.JoiningDate = data.JoiningDate.In(api.loc)
	if err := ne.Validate(api.validate); err != nil {
		return employee.NewEmployee{}, err
	}
	return ne, nil
}

func (api *employeeApi) create(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating employee")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *employeeApi) query(ctx echo.Context) error {
	filter := new(employee.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []employee.Employee{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	emps, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) queryPerClassTeachers(ctx echo.Context) error {
	emps, err := api.svc.ListPerClassTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing per class teachers")
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting employee")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *employeeApi) update(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *employeeApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	res, err := api.svc.BulkDelete(ctx.Request().Context(), query.IDs...)
	if err != nil {
		return errors.Wrap(err, "deleting employees")
	}
	return ctx.JSON(http.StatusOK, res)
}
