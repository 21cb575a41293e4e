package echoapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
)

const (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

var (
	errInvalidDate = errors.New("enter a valid date (YYYY-MM-DD)")
	errInvalidInt  = errors.New("enter a whole number")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Date accepts either a calendar day (YYYY-MM-DD) or an RFC 3339 timestamp.
// A calendar day is only placed in time once a location is known.
type Date struct {
	t       time.Time
	dayOnly bool
	set     bool
}

func parseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t: t, dayOnly: true, set: true}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, errInvalidDate
	}
	return Date{t: t, set: true}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) IsZero() bool { return !d.set }

// In places the date in loc; calendar days start at midnight there.
func (d Date) In(loc *time.Location) time.Time {
	if !d.set {
		return time.Time{}
	}
	if d.dayOnly {
		return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
	}
	return d.t.In(loc)
}

// dateParam reads the name query param as a date in loc.
func dateParam(ctx echo.Context, name string, loc *time.Location) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, core.NewFieldValidationError(name, errors.New("this field is required"))
	}
	d, err := parseDate(val)
	if err != nil {
		return time.Time{}, core.NewFieldValidationError(name, err)
	}
	return d.In(loc), nil
}

// intParam reads the name query param as an int.
func intParam(ctx echo.Context, name string) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return 0, core.NewFieldValidationError(name, errors.New("this field is required"))
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewFieldValidationError(name, errInvalidInt)
	}
	return n, nil
}

// bindJSON binds the request body; malformed payloads are reported as a bad request.
func bindJSON(ctx echo.Context, dest interface{}, what string) error {
	if err := ctx.Bind(dest); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok {
			return herr
		}
		return errors.Wrap(err, "binding to "+what)
	}
	return nil
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)
