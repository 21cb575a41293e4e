package payroll

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
)

const name = "github.com/trezcool/tuition/core/payroll"

// AggregationError is returned whenever the data a monthly payroll needs cannot be read.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string { return "aggregation failed" }

func (e *AggregationError) Unwrap() error { return e.Err }

type (
	// TeacherDirectory lists the teachers paid per class.
	TeacherDirectory interface {
		ListPerClassTeachers(ctx context.Context) ([]employee.Employee, error)
	}

	// RecordStore lists the daily class counts within a period, oldest first.
	RecordStore interface {
		ListBetween(ctx context.Context, start, end time.Time) ([]classcount.Record, error)
	}

	Service interface {
		// ComputeMonthly summarizes every per class teacher over the month of ref.
		// It only reads; calling it twice over unchanged data gives the same result.
		ComputeMonthly(ctx context.Context, ref time.Time) ([]TeacherSummary, error)
		Location() *time.Location
	}

	service struct {
		teachers TeacherDirectory
		records  RecordStore
		loc      *time.Location

		tracer trace.Tracer
		runs   metric.Int64Counter
	}
)

var _ Service = (*service)(nil)

func NewService(teachers TeacherDirectory, records RecordStore, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	svc := &service{
		teachers: teachers,
		records:  records,
		loc:      loc,
		tracer:   otel.Tracer(name),
	}
	runs, err := otel.Meter(name).Int64Counter("payroll.computations", metric.WithDescription("Number of monthly payroll computations"))
	if err == nil {
		svc.runs = runs
	}
	return svc
}

func (svc *service) Location() *time.Location { return svc.loc }

func (svc *service) ComputeMonthly(ctx context.Context, ref time.Time) ([]TeacherSummary, error) {
	start, end := core.MonthRange(ref, svc.loc)
	monthAttr := attribute.String("month", start.Format("2006-01"))

	ctx, span := svc.tracer.Start(ctx, "compute monthly payroll", trace.WithAttributes(monthAttr))
	defer span.End()

	fail := func(err error) ([]TeacherSummary, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregation failed")
		svc.count(ctx, monthAttr, attribute.Bool("failed", true))
		return nil, &AggregationError{Err: err}
	}

	teachers, err := svc.teachers.ListPerClassTeachers(ctx)
	if err != nil {
		return fail(err)
	}
	records, err := svc.records.ListBetween(ctx, start, end)
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("teachers", len(teachers)), attribute.Int("records", len(records)))
	svc.count(ctx, monthAttr, attribute.Bool("failed", false))
	return Aggregate(teachers, records), nil
}

func (svc *service) count(ctx context.Context, attrs ...attribute.KeyValue) {
	if svc.runs != nil {
		svc.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
