package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrEmailExists    = errors.New("an employee with this email already exists")
	ErrPhoneExists    = errors.New("an employee with this phone number already exists")
	ErrUnknownClass   = errors.New("unknown class")
	ErrNothingDeleted = errors.New("no employees were deleted")

	ErrPerClassRatesRequired = errors.New("rates per class are required for per class payment")
	ErrMonthlyRateRequired   = errors.New("a monthly payment is required for monthly payment")
)

type (
	Repository interface {
		// CheckContactUniqueness returns ErrEmailExists or ErrPhoneExists when taken by an employee other than excludedID.
		CheckContactUniqueness(ctx context.Context, email, phone, excludedID string) error
		EmployeeCodeExists(ctx context.Context, code string) (bool, error)
		CountEmployees(ctx context.Context) (int, error)
		CreateEmployee(ctx context.Context, e Employee) (Employee, error)
		// QueryEmployees does a case-insensitive match of QueryFilter.Search on names, email, phone and code.
		QueryEmployees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error)
		GetEmployee(ctx context.Context, id string) (Employee, error)
		UpdateEmployee(ctx context.Context, e Employee) (Employee, error)
		DeleteEmployee(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, ne NewEmployee) (Employee, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error)
		GetByID(ctx context.Context, id string) (Employee, error)
		Update(ctx context.Context, id string, ne NewEmployee) (Employee, error)
		Delete(ctx context.Context, id string) error
		BulkDelete(ctx context.Context, ids ...string) (BulkDeleteResult, error)
		// ListPerClassTeachers returns the teachers paid per class, with their rate rows populated.
		ListPerClassTeachers(ctx context.Context) ([]Employee, error)
	}

	service struct {
		repo    Repository
		classes class.Lookup
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classes class.Lookup) Service {
	return &service{repo: repo, classes: classes}
}

func (svc *service) checkContactUniqueness(ctx context.Context, email, phone, excludedID string) error {
	if err := svc.repo.CheckContactUniqueness(ctx, email, phone, excludedID); err != nil {
		switch err {
		case ErrEmailExists:
			return core.NewFieldValidationError("email", err)
		case ErrPhoneExists:
			return core.NewFieldValidationError("primary_phone", err)
		default:
			return err
		}
	}
	return nil
}

// checkClasses makes sure every rate row references known classes.
func (svc *service) checkClasses(ctx context.Context, rows []ClassPayment) error {
	var ids []string
	for _, row := range rows {
		ids = append(ids, class.RefIDs(row.Classes)...)
	}
	found, err := svc.classes.GetByIDs(ctx, ids...)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return core.NewFieldValidationError("payment_per_class", ErrUnknownClass)
		}
	}
	return nil
}

// populate fills the class names of the rate rows of emps.
func (svc *service) populate(ctx context.Context, emps ...Employee) ([]Employee, error) {
	var ids []string
	for _, e := range emps {
		ids = append(ids, e.classRefIDs()...)
	}
	if len(ids) == 0 {
		return emps, nil
	}
	found, err := svc.classes.GetByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range emps {
		for j := range emps[i].PaymentPerClass {
			class.PopulateRefs(emps[i].PaymentPerClass[j].Classes, found)
		}
	}
	return emps, nil
}

func (svc *service) populateOne(ctx context.Context, e Employee) (Employee, error) {
	emps, err := svc.populate(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	return emps[0], nil
}

// generateCode builds a code from the type, the joining month and a sequence, e.g. "T-2409-0007".
func (svc *service) generateCode(ctx context.Context, ne NewEmployee) (string, error) {
	count, err := svc.repo.CountEmployees(ctx)
	if err != nil {
		return "", err
	}
	prefix := "E"
	for _, r := range string(ne.Type) {
		prefix = string(unicode.ToUpper(r))
		break
	}
	for seq := count + 1; ; seq++ {
		code := fmt.Sprintf("%s-%s-%04d", prefix, ne.JoiningDate.Format("0601"), seq)
		exists, err := svc.repo.EmployeeCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func (svc *service) apply(e *Employee, ne NewEmployee) {
	e.FirstName = ne.FirstName
	e.LastName = ne.LastName
	e.ShortName = ne.ShortName
	if e.ShortName == "" {
		e.ShortName = strings.Fields(ne.FirstName)[0]
	}
	e.Email = ne.Email
	e.PrimaryPhone = ne.PrimaryPhone
	e.Type = ne.Type
	e.PaymentMethod = ne.PaymentMethod
	e.PaymentPerClass = ne.PaymentPerClass
	e.PaymentPerMonth = ne.PaymentPerMonth
	if ne.PaymentMethod == PaymentPerClass {
		e.PaymentPerMonth.Valid = false
	} else {
		e.PaymentPerClass = nil
	}
	e.JoiningDate = ne.JoiningDate
	e.Comments = ne.Comments
}

func (svc *service) Create(ctx context.Context, ne NewEmployee) (Employee, error) {
	if err := svc.checkContactUniqueness(ctx, ne.Email, ne.PrimaryPhone, ""); err != nil {
		return Employee{}, err
	}
	if err := svc.checkClasses(ctx, ne.PaymentPerClass); err != nil {
		return Employee{}, err
	}
	code, err := svc.generateCode(ctx, ne)
	if err != nil {
		return Employee{}, err
	}

	now := time.Now().UTC()
	e := Employee{Code: code, CreatedAt: now, UpdatedAt: now}
	svc.apply(&e, ne)

	e, err = svc.repo.CreateEmployee(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	return svc.populateOne(ctx, e)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error) {
	emps, err := svc.repo.QueryEmployees(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}
	return svc.populate(ctx, emps...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Employee, error) {
	e, err := svc.repo.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	return svc.populateOne(ctx, e)
}

func (svc *service) Update(ctx context.Context, id string, ne NewEmployee) (Employee, error) {
	e, err := svc.repo.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if err := svc.checkContactUniqueness(ctx, ne.Email, ne.PrimaryPhone, e.ID); err != nil {
		return Employee{}, err
	}
	if err := svc.checkClasses(ctx, ne.PaymentPerClass); err != nil {
		return Employee{}, err
	}

	svc.apply(&e, ne)
	e.UpdatedAt = time.Now().UTC()

	e, err = svc.repo.UpdateEmployee(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	return svc.populateOne(ctx, e)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEmployee(ctx, id)
}

func (svc *service) BulkDelete(ctx context.Context, ids ...string) (BulkDeleteResult, error) {
	res := BulkDeleteResult{Deleted: []string{}, Failed: []BulkDeleteFailure{}}
	for _, id := range ids {
		if err := svc.repo.DeleteEmployee(ctx, id); err != nil {
			if err != ErrNotFound {
				return res, err
			}
			res.Failed = append(res.Failed, BulkDeleteFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	if len(res.Deleted) == 0 {
		return res, core.NewValidationError(ErrNothingDeleted)
	}
	return res, nil
}

func (svc *service) ListPerClassTeachers(ctx context.Context) ([]Employee, error) {
	filter := &QueryFilter{Type: TypeTeacher, PaymentMethod: PaymentPerClass}
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: true}}
	return svc.Query(ctx, filter, ordering)
}
