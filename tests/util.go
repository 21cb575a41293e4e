package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/user"
)

// NewValidator returns a validator with every custom validation and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// LinkEmployee ties a teacher account to its employee record.
func LinkEmployee(t *testing.T, repo user.Repository, usr user.User, employeeID string) user.User {
	t.Helper()

	usr.EmployeeID = employeeID
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("LinkEmployee() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name string) class.Class {
	t.Helper()

	now := time.Now().UTC()
	c, err := repo.CreateClass(context.Background(), class.Class{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return c
}

// Rate builds a rate row paying amount for every class of classes.
func Rate(amount string, classes ...class.Class) employee.ClassPayment {
	refs := make([]class.Ref, 0, len(classes))
	for _, c := range classes {
		refs = append(refs, class.Ref{ID: c.ID, Name: c.Name})
	}
	return employee.ClassPayment{Classes: refs, Amount: decimal.RequireFromString(amount)}
}

// CreateTeacher stores a per class teacher; without rates it is paid monthly instead.
func CreateTeacher(t *testing.T, repo employee.Repository, firstName, lastName, phone string, rates ...employee.ClassPayment) employee.Employee {
	t.Helper()

	now := time.Now().UTC()
	e := employee.Employee{
		Code:            "T-" + phone,
		FirstName:       firstName,
		LastName:        lastName,
		ShortName:       firstName,
		PrimaryPhone:    phone,
		Type:            employee.TypeTeacher,
		PaymentMethod:   employee.PaymentPerClass,
		PaymentPerClass: rates,
		JoiningDate:     time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(rates) == 0 {
		e.PaymentMethod = employee.PaymentMonthly
		e.PaymentPerMonth = decimal.NewNullDecimal(decimal.NewFromInt(1000))
	}
	e, err := repo.CreateEmployee(context.Background(), e)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return e
}

// Entry builds a class entry of count periods over classes.
func Entry(count int, classes ...class.Class) classcount.ClassEntry {
	refs := make([]class.Ref, 0, len(classes))
	for _, c := range classes {
		refs = append(refs, class.Ref{ID: c.ID})
	}
	return classcount.ClassEntry{Classes: refs, Count: count}
}

func CreateRecord(
	t *testing.T,
	repo classcount.Repository,
	employeeID string,
	date time.Time,
	entries []classcount.ClassEntry,
	proxies ...classcount.ProxyEntry,
) classcount.Record {
	t.Helper()

	now := time.Now().UTC()
	r := classcount.Record{
		EmployeeID:    employeeID,
		Date:          date,
		Classes:       entries,
		HasProxyClass: len(proxies) > 0,
		ProxyClasses:  proxies,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.ProxyClasses == nil {
		r.ProxyClasses = []classcount.ProxyEntry{}
	}
	r, err := repo.CreateRecord(context.Background(), r)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return r
}
