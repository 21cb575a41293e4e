package employee_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/employee"
	inmemdb "github.com/trezcool/tuition/storage/database/inmem"
	testutil "github.com/trezcool/tuition/tests"
)

func newService(t *testing.T) (employee.Service, class.Class) {
	db := inmemdb.Open()
	classRepo := inmemdb.NewClassRepository(db)
	six := testutil.CreateClass(t, classRepo, "6")
	return employee.NewService(inmemdb.NewEmployeeRepository(db), class.NewService(classRepo)), six
}

func newTeacher(phone, email string, rates ...employee.ClassPayment) employee.NewEmployee {
	ne := employee.NewEmployee{
		FirstName:       "Abdul Karim",
		LastName:        "Ahmed",
		Email:           email,
		PrimaryPhone:    phone,
		Type:            employee.TypeTeacher,
		PaymentMethod:   employee.PaymentPerClass,
		PaymentPerClass: rates,
		JoiningDate:     time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(rates) == 0 {
		ne.PaymentMethod = employee.PaymentMonthly
		ne.PaymentPerMonth = decimal.NewNullDecimal(decimal.NewFromInt(8000))
	}
	return ne
}

func TestService_Create(t *testing.T) {
	svc, six := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, newTeacher("01711000001", "karim@test.com", testutil.Rate("100", six)))
	require.NoError(t, err)
	assert.Equal(t, "T-2409-0001", first.Code)
	assert.Equal(t, "Abdul", first.ShortName)
	assert.Equal(t, "Abdul Karim Ahmed", first.FullName())
	assert.Equal(t, "6", first.PaymentPerClass[0].Classes[0].Name)

	second, err := svc.Create(ctx, newTeacher("01711000002", ""))
	require.NoError(t, err)
	assert.Equal(t, "T-2409-0002", second.Code)
	assert.Empty(t, second.PaymentPerClass)
	assert.True(t, second.PaymentPerMonth.Valid)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, newTeacher("01711000003", "karim@test.com"))
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "err = %v", err)
		assert.Equal(t, []core.FieldError{{Field: "email", Error: employee.ErrEmailExists.Error()}}, vErr.Fields)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		_, err := svc.Create(ctx, newTeacher("01711000002", "other@test.com"))
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "err = %v", err)
		assert.Equal(t, []core.FieldError{{Field: "primary_phone", Error: employee.ErrPhoneExists.Error()}}, vErr.Fields)
	})

	t.Run("unknown class", func(t *testing.T) {
		rate := employee.ClassPayment{Classes: []class.Ref{{ID: "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f"}}, Amount: decimal.NewFromInt(1)}
		_, err := svc.Create(ctx, newTeacher("01711000004", "", rate))
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "err = %v", err)
		assert.Equal(t, employee.ErrUnknownClass, vErr.Err)
	})

	t.Run("update keeps own contacts", func(t *testing.T) {
		ne := newTeacher("01711000001", "karim@test.com", testutil.Rate("120", six))
		ne.ShortName = "Karim"
		e, err := svc.Update(ctx, first.ID, ne)
		require.NoError(t, err)
		assert.Equal(t, first.Code, e.Code)
		assert.Equal(t, "Karim", e.ShortName)
		assert.True(t, decimal.NewFromInt(120).Equal(e.PaymentPerClass[0].Amount))
	})
}

func TestService_ListPerClassTeachers(t *testing.T) {
	svc, six := newService(t)
	ctx := context.Background()

	perClass, err := svc.Create(ctx, newTeacher("01711000001", "", testutil.Rate("100", six)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newTeacher("01711000002", ""))
	require.NoError(t, err)
	cleaner := newTeacher("01711000003", "", testutil.Rate("100", six))
	cleaner.Type = employee.TypeCleaner
	_, err = svc.Create(ctx, cleaner)
	require.NoError(t, err)

	teachers, err := svc.ListPerClassTeachers(ctx)
	require.NoError(t, err)
	if assert.Len(t, teachers, 1) {
		assert.Equal(t, perClass.ID, teachers[0].ID)
		assert.Equal(t, "6", teachers[0].PaymentPerClass[0].Classes[0].Name)
	}
}

func TestService_BulkDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, newTeacher("01711000001", ""))
	require.NoError(t, err)
	unknown := "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f"

	res, err := svc.BulkDelete(ctx, e.ID, unknown)
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, res.Deleted)
	assert.Equal(t, []employee.BulkDeleteFailure{{ID: unknown, Error: employee.ErrNotFound.Error()}}, res.Failed)

	_, err = svc.GetByID(ctx, e.ID)
	assert.Equal(t, employee.ErrNotFound, err)

	res, err = svc.BulkDelete(ctx, unknown)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, employee.ErrNothingDeleted, vErr.Err)
	assert.Empty(t, res.Deleted)
}

func TestNewEmployee_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()
	rate := employee.ClassPayment{Classes: []class.Ref{{ID: "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f"}}, Amount: decimal.NewFromInt(100)}

	tests := []struct {
		name      string
		edit      func(ne *employee.NewEmployee)
		wantField string
		wantErr   error
	}{
		{
			name: "per class with rates",
			edit: func(ne *employee.NewEmployee) {
				ne.PaymentMethod = employee.PaymentPerClass
				ne.PaymentPerClass = []employee.ClassPayment{rate}
			},
		},
		{
			name: "per class without rates",
			edit: func(ne *employee.NewEmployee) {
				ne.PaymentMethod = employee.PaymentPerClass
				ne.PaymentPerMonth = decimal.NewNullDecimal(decimal.NewFromInt(8000))
			},
			wantField: "payment_per_class",
			wantErr:   employee.ErrPerClassRatesRequired,
		},
		{
			name: "monthly with amount",
			edit: func(ne *employee.NewEmployee) {
				ne.PaymentMethod = employee.PaymentMonthly
				ne.PaymentPerMonth = decimal.NewNullDecimal(decimal.NewFromInt(8000))
			},
		},
		{
			name: "monthly without amount",
			edit: func(ne *employee.NewEmployee) {
				ne.PaymentMethod = employee.PaymentMonthly
				ne.PaymentPerClass = []employee.ClassPayment{rate}
			},
			wantField: "payment_per_month",
			wantErr:   employee.ErrMonthlyRateRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := newTeacher("01711000001", "")
			ne.PaymentPerClass = nil
			ne.PaymentPerMonth = decimal.NullDecimal{}
			tt.edit(&ne)

			err := ne.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "err = %v", err)
			assert.Equal(t, tt.wantErr, vErr.Err)
			assert.Equal(t, []core.FieldError{{Field: tt.wantField, Error: tt.wantErr.Error()}}, vErr.Fields)
		})
	}
}
