package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
)

type teacherDirectoryStub struct {
	teachers []employee.Employee
	err      error
}

func (d *teacherDirectoryStub) ListPerClassTeachers(context.Context) ([]employee.Employee, error) {
	return d.teachers, d.err
}

type recordStoreStub struct {
	records    []classcount.Record
	err        error
	start, end time.Time
	calls      int
}

func (s *recordStoreStub) ListBetween(_ context.Context, start, end time.Time) ([]classcount.Record, error) {
	s.calls++
	s.start, s.end = start, end
	return s.records, s.err
}

func TestService_ComputeMonthly(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*3600)

	teacher := employee.Employee{
		ID:              "t1",
		FirstName:       "Rahim",
		ShortName:       "R",
		PaymentPerClass: []employee.ClassPayment{rate(100, "5"), rate(150, "9"), rate(200, "12")},
	}
	dir := &teacherDirectoryStub{teachers: []employee.Employee{teacher}}
	store := &recordStoreStub{records: []classcount.Record{
		{EmployeeID: "t1", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, dhaka), Classes: []classcount.ClassEntry{entry(4, "5")}},
		{EmployeeID: "t1", Date: time.Date(2024, 2, 2, 0, 0, 0, 0, dhaka), Classes: []classcount.ClassEntry{entry(3, "9")}},
		{EmployeeID: "t1", Date: time.Date(2024, 2, 29, 0, 0, 0, 0, dhaka), HasProxyClass: true, ProxyClasses: proxies("12")},
	}}
	svc := NewService(dir, store, dhaka)
	assert.Equal(t, dhaka, svc.Location())

	ref := time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)
	got, err := svc.ComputeMonthly(context.Background(), ref)
	require.NoError(t, err)

	// month bounds in the configured zone
	assert.True(t, store.start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, dhaka)), "start = %v", store.start)
	assert.True(t, store.end.Equal(time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), dhaka)), "end = %v", store.end)

	require.Len(t, got, 1)
	assert.Equal(t, BandCounts{Lower: 4, Middle: 3, Upper: 1}, got[0].MonthTotals)
	assertAmounts(t, [4]int64{400, 450, 200, 1050}, got[0].MonthIncome)

	again, err := svc.ComputeMonthly(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 2, store.calls)
}

func TestService_ComputeMonthly_monthEdges(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "UTC late evening is next day in Dhaka",
			ref:       time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.FixedZone("+06", 6*3600)),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.FixedZone("+06", 6*3600)),
		},
		{
			name:      "December",
			ref:       time.Date(2023, 12, 1, 0, 0, 0, 0, time.FixedZone("+06", 6*3600)),
			wantStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.FixedZone("+06", 6*3600)),
			wantEnd:   time.Date(2023, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.FixedZone("+06", 6*3600)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordStoreStub{}
			svc := NewService(&teacherDirectoryStub{}, store, time.FixedZone("+06", 6*3600))

			got, err := svc.ComputeMonthly(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.True(t, store.start.Equal(tt.wantStart), "start = %v; want %v", store.start, tt.wantStart)
			assert.True(t, store.end.Equal(tt.wantEnd), "end = %v; want %v", store.end, tt.wantEnd)
		})
	}
}

func TestService_ComputeMonthly_failures(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		dir   *teacherDirectoryStub
		store *recordStoreStub
	}{
		{name: "directory failure", dir: &teacherDirectoryStub{err: boom}, store: &recordStoreStub{}},
		{name: "record store failure", dir: &teacherDirectoryStub{}, store: &recordStoreStub{err: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.dir, tt.store, time.UTC)

			got, err := svc.ComputeMonthly(context.Background(), time.Now())
			assert.Nil(t, got)
			require.Error(t, err)
			assert.Equal(t, "aggregation failed", err.Error())

			var aggErr *AggregationError
			require.True(t, errors.As(err, &aggErr))
			assert.Equal(t, boom, errors.Unwrap(err))
		})
	}
}
