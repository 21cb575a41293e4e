package employee

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
)

type (
	Type          string
	PaymentMethod string
)

const (
	TypeTeacher Type = "Teacher"
	TypeCleaner Type = "Cleaner"

	PaymentPerClass PaymentMethod = "PerClass"
	PaymentMonthly  PaymentMethod = "Monthly"
)

// ClassPayment is a rate row: the amount paid per class taught in any of Classes.
type ClassPayment struct {
	Classes []class.Ref     `json:"classes" validate:"required,min=1,dive"`
	Amount  decimal.Decimal `json:"amount" validate:"gte=0"`
}

type Employee struct {
	ID              string              `json:"id"`
	Code            string              `json:"code"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	ShortName       string              `json:"short_name"`
	Email           string              `json:"email"`
	PrimaryPhone    string              `json:"primary_phone"`
	Type            Type                `json:"employee_type"`
	PaymentMethod   PaymentMethod       `json:"payment_method"`
	PaymentPerClass []ClassPayment      `json:"payment_per_class"`
	PaymentPerMonth decimal.NullDecimal `json:"payment_per_month"`
	JoiningDate     time.Time           `json:"joining_date"`
	Comments        string              `json:"comments"`
	CreatedAt       time.Time           `json:"created_at"` // UTC
	UpdatedAt       time.Time           `json:"updated_at"` // UTC
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsPerClassTeacher tells whether e is paid from class counts.
func (e Employee) IsPerClassTeacher() bool {
	return e.Type == TypeTeacher && e.PaymentMethod == PaymentPerClass
}

func (e Employee) classRefIDs() []string {
	var ids []string
	for _, row := range e.PaymentPerClass {
		ids = append(ids, class.RefIDs(row.Classes)...)
	}
	return ids
}

// NewEmployee contains the information needed to create or replace an Employee.
type NewEmployee struct {
	FirstName       string              `json:"first_name" validate:"required,max=50"`
	LastName        string              `json:"last_name" validate:"required,max=50"`
	ShortName       string              `json:"short_name" validate:"omitempty,max=20"`
	Email           string              `json:"email" validate:"omitempty,email"`
	PrimaryPhone    string              `json:"primary_phone" validate:"required,phone"`
	Type            Type                `json:"employee_type" validate:"required,oneof=Teacher Cleaner"`
	PaymentMethod   PaymentMethod       `json:"payment_method" validate:"required,oneof=PerClass Monthly"`
	PaymentPerClass []ClassPayment      `json:"payment_per_class" validate:"omitempty,dive"`
	PaymentPerMonth decimal.NullDecimal `json:"payment_per_month" validate:"omitempty,gte=0"`
	JoiningDate     time.Time           `json:"joining_date" validate:"required"`
	Comments        string              `json:"comments" validate:"omitempty,max=500"`
}

func (ne *NewEmployee) Validate(validate *validator.Validate) error {
	ne.FirstName = core.CleanString(ne.FirstName)
	ne.LastName = core.CleanString(ne.LastName)
	ne.ShortName = core.CleanString(ne.ShortName)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.PrimaryPhone = core.CleanString(ne.PrimaryPhone)
	ne.Comments = core.CleanString(ne.Comments)
	for i := range ne.PaymentPerClass {
		for j := range ne.PaymentPerClass[i].Classes {
			ne.PaymentPerClass[i].Classes[j].ID = core.CleanString(ne.PaymentPerClass[i].Classes[j].ID)
		}
	}
	if err := validate.Struct(ne); err != nil {
		return err
	}

	switch ne.PaymentMethod {
	case PaymentPerClass:
		if len(ne.PaymentPerClass) == 0 {
			return core.NewFieldValidationError("payment_per_class", ErrPerClassRatesRequired)
		}
	case PaymentMonthly:
		if !ne.PaymentPerMonth.Valid {
			return core.NewFieldValidationError("payment_per_month", ErrMonthlyRateRequired)
		}
	}
	return nil
}

type QueryFilter struct {
	Search        string        `query:"search"`
	Type          Type          `query:"employee_type"`
	PaymentMethod PaymentMethod `query:"payment_method"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type (
	BulkDeleteFailure struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	}

	BulkDeleteResult struct {
		Deleted []string            `json:"deleted"`
		Failed  []BulkDeleteFailure `json:"failed"`
	}
)
