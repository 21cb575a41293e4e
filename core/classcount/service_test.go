package classcount_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	inmemdb "github.com/trezcool/tuition/storage/database/inmem"
	testutil "github.com/trezcool/tuition/tests"
)

type fixture struct {
	svc       classcount.Service
	repo      classcount.Repository
	six, nine class.Class
	rahim     employee.Employee
	karim     employee.Employee
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	db := inmemdb.Open()
	classRepo := inmemdb.NewClassRepository(db)
	empRepo := inmemdb.NewEmployeeRepository(db)

	f := &fixture{repo: inmemdb.NewClassCountRepository(db)}
	classSvc := class.NewService(classRepo)
	f.svc = classcount.NewService(f.repo, classSvc, employee.NewService(empRepo, classSvc), loc)

	f.six = testutil.CreateClass(t, classRepo, "6")
	f.nine = testutil.CreateClass(t, classRepo, "9")
	f.rahim = testutil.CreateTeacher(t, empRepo, "Rahim", "Uddin", "01711000001", testutil.Rate("100", f.six))
	f.karim = testutil.CreateTeacher(t, empRepo, "Karim", "Ahmed", "01711000002", testutil.Rate("150", f.nine))
	return f
}

func validationErr(t *testing.T, err error) *core.ValidationError {
	t.Helper()

	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "err = %v (%T); want *core.ValidationError", err, err)
	return vErr
}

func TestService_Create(t *testing.T) {
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)
	f := newFixture(t, dhaka)
	ctx := context.Background()

	t.Run("normalizes the day in the configured zone", func(t *testing.T) {
		// 20:00 UTC on the 3rd is already the 4th in Dhaka
		r, err := f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID: f.rahim.ID,
			Date:       time.Date(2024, time.March, 3, 20, 0, 0, 0, time.UTC),
			Classes:    []classcount.ClassEntry{testutil.Entry(3, f.six)},
		})
		require.NoError(t, err)
		assert.True(t, r.Date.Equal(time.Date(2024, time.March, 4, 0, 0, 0, 0, dhaka)), "date = %v", r.Date)
		assert.Equal(t, "6", r.Classes[0].Classes[0].Name)
		assert.NotNil(t, r.ProxyClasses)
	})

	t.Run("one record per employee and day", func(t *testing.T) {
		_, err := f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID: f.rahim.ID,
			Date:       time.Date(2024, time.March, 4, 9, 0, 0, 0, dhaka),
		})
		vErr := validationErr(t, err)
		assert.Equal(t, classcount.ErrRecordExists, vErr.Err)

		// another teacher may report the same day
		_, err = f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID: f.karim.ID,
			Date:       time.Date(2024, time.March, 4, 9, 0, 0, 0, dhaka),
		})
		assert.NoError(t, err)
	})

	t.Run("proxies required with flag", func(t *testing.T) {
		_, err := f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID:    f.rahim.ID,
			Date:          time.Date(2024, time.March, 5, 0, 0, 0, 0, dhaka),
			HasProxyClass: true,
		})
		vErr := validationErr(t, err)
		assert.Equal(t, []core.FieldError{{Field: "proxy_classes", Error: classcount.ErrProxiesRequired.Error()}}, vErr.Fields)
	})

	t.Run("proxies cleared without flag", func(t *testing.T) {
		r, err := f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID:   f.rahim.ID,
			Date:         time.Date(2024, time.March, 6, 0, 0, 0, 0, dhaka),
			ProxyClasses: []classcount.ProxyEntry{{EmployeeID: f.karim.ID, Class: class.Ref{ID: f.nine.ID}}},
		})
		require.NoError(t, err)
		assert.False(t, r.HasProxyClass)
		assert.Empty(t, r.ProxyClasses)
	})

	t.Run("unknown substitute", func(t *testing.T) {
		_, err := f.svc.Create(ctx, classcount.NewRecord{
			EmployeeID:    f.rahim.ID,
			Date:          time.Date(2024, time.March, 7, 0, 0, 0, 0, dhaka),
			HasProxyClass: true,
			ProxyClasses:  []classcount.ProxyEntry{{EmployeeID: "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f", Class: class.Ref{ID: f.nine.ID}}},
		})
		vErr := validationErr(t, err)
		assert.Equal(t, classcount.ErrSubstituteUnknown, vErr.Err)
	})
}

func TestService_QueryByMonth(t *testing.T) {
	f := newFixture(t, time.UTC)
	ctx := context.Background()
	entries := []classcount.ClassEntry{testutil.Entry(1, f.six)}

	feb := testutil.CreateRecord(t, f.repo, f.rahim.ID, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), entries)
	first := testutil.CreateRecord(t, f.repo, f.rahim.ID, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), entries)
	last := testutil.CreateRecord(t, f.repo, f.rahim.ID, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), entries)
	other := testutil.CreateRecord(t, f.repo, f.karim.ID, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), entries)

	ids := func(recs []classcount.Record) []string {
		out := make([]string, 0, len(recs))
		for _, r := range recs {
			out = append(out, r.ID)
		}
		return out
	}

	recs, err := f.svc.QueryByMonth(ctx, 3, 2024, "")
	require.NoError(t, err)
	assert.Equal(t, []string{last.ID, other.ID, first.ID}, ids(recs))

	recs, err = f.svc.QueryByMonth(ctx, 3, 2024, f.rahim.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{last.ID, first.ID}, ids(recs))

	recs, err = f.svc.ListBetween(ctx, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.March, 1, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{feb.ID, first.ID}, ids(recs))

	tests := []struct {
		name        string
		month, year int
		field       string
	}{
		{name: "month 0", month: 0, year: 2024, field: "month"},
		{name: "month 13", month: 13, year: 2024, field: "month"},
		{name: "short year", month: 3, year: 24, field: "year"},
		{name: "long year", month: 3, year: 20245, field: "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.QueryByMonth(ctx, tt.month, tt.year, "")
			vErr := validationErr(t, err)
			if assert.Len(t, vErr.Fields, 1) {
				assert.Equal(t, tt.field, vErr.Fields[0].Field)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	f := newFixture(t, time.UTC)
	ctx := context.Background()
	entries := []classcount.ClassEntry{testutil.Entry(1, f.six)}

	first := testutil.CreateRecord(t, f.repo, f.rahim.ID, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), entries)
	second := testutil.CreateRecord(t, f.repo, f.rahim.ID, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), entries)

	moved := time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)
	_, err := f.svc.Update(ctx, second.ID, classcount.UpdateRecord{Date: &moved})
	vErr := validationErr(t, err)
	assert.Equal(t, classcount.ErrRecordExists, vErr.Err)

	// keeping its own day is fine
	same := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	yes := true
	r, err := f.svc.Update(ctx, first.ID, classcount.UpdateRecord{
		Date:          &same,
		HasProxyClass: &yes,
		ProxyClasses:  []classcount.ProxyEntry{{EmployeeID: f.karim.ID, Class: class.Ref{ID: f.nine.ID}}},
	})
	require.NoError(t, err)
	assert.True(t, r.Date.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
	if assert.Len(t, r.ProxyClasses, 1) {
		assert.Equal(t, "9", r.ProxyClasses[0].Class.Name)
	}

	no := false
	r, err = f.svc.Update(ctx, first.ID, classcount.UpdateRecord{HasProxyClass: &no})
	require.NoError(t, err)
	assert.Empty(t, r.ProxyClasses)

	_, err = f.svc.Update(ctx, "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f", classcount.UpdateRecord{})
	assert.Equal(t, classcount.ErrNotFound, err)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	_, err = f.svc.GetByID(ctx, first.ID)
	assert.Equal(t, classcount.ErrNotFound, err)
}
