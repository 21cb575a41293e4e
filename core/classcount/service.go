package classcount

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/employee"
)

var (
	ErrNotFound          = errors.New("class count not found")
	ErrRecordExists      = errors.New("a class count already exists for this employee and date")
	ErrProxiesRequired   = errors.New("proxy classes are required when has_proxy_class is true")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrSubstituteUnknown = errors.New("substituted employee not found")
	ErrUnknownClass      = errors.New("unknown class")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrInvalidYear       = errors.New("year must be in YYYY format")
)

type (
	Repository interface {
		// RecordExists tells whether employeeID has a record on date, other than excludedID.
		RecordExists(ctx context.Context, employeeID string, date time.Time, excludedID string) (bool, error)
		CreateRecord(ctx context.Context, r Record) (Record, error)
		// QueryRecords returns the records matching all set QueryFilter fields; From and To are inclusive.
		QueryRecords(ctx context.Context, filter *QueryFilter) ([]Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		GetRecordByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
		UpdateRecord(ctx context.Context, r Record) (Record, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	// EmployeeLookup finds the teachers records belong to.
	EmployeeLookup interface {
		GetByID(ctx context.Context, id string) (employee.Employee, error)
	}

	Service interface {
		Create(ctx context.Context, nr NewRecord) (Record, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Record, error)
		GetByID(ctx context.Context, id string) (Record, error)
		GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
		QueryByMonth(ctx context.Context, month, year int, employeeID string) ([]Record, error)
		Update(ctx context.Context, id string, ur UpdateRecord) (Record, error)
		Delete(ctx context.Context, id string) error
		// ListBetween returns every record dated within [start, end], oldest first.
		ListBetween(ctx context.Context, start, end time.Time) ([]Record, error)
	}

	service struct {
		repo      Repository
		classes   class.Lookup
		employees EmployeeLookup
		loc       *time.Location
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classes class.Lookup, employees EmployeeLookup, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{repo: repo, classes: classes, employees: employees, loc: loc}
}

func (svc *service) day(t time.Time) time.Time {
	return core.Day(t, svc.loc)
}

// checkProxies enforces the has_proxy_class flag: proxies are required when set and dropped otherwise.
func checkProxies(r *Record) error {
	if !r.HasProxyClass {
		r.ProxyClasses = []ProxyEntry{}
		return nil
	}
	if len(r.ProxyClasses) == 0 {
		return core.NewFieldValidationError("proxy_classes", ErrProxiesRequired)
	}
	return nil
}

func (svc *service) checkReferences(ctx context.Context, r Record) error {
	if _, err := svc.employees.GetByID(ctx, r.EmployeeID); err != nil {
		if err == employee.ErrNotFound {
			return core.NewFieldValidationError("employee_id", ErrEmployeeNotFound)
		}
		return err
	}
	for _, proxy := range r.ProxyClasses {
		if _, err := svc.employees.GetByID(ctx, proxy.EmployeeID); err != nil {
			if err == employee.ErrNotFound {
				return core.NewFieldValidationError("proxy_classes", ErrSubstituteUnknown)
			}
			return err
		}
	}

	ids := r.classRefIDs()
	found, err := svc.classes.GetByIDs(ctx, ids...)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return core.NewFieldValidationError("classes", ErrUnknownClass)
		}
	}
	return nil
}

func (svc *service) checkUniqueness(ctx context.Context, r Record) error {
	exists, err := svc.repo.RecordExists(ctx, r.EmployeeID, r.Date, r.ID)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrRecordExists)
	}
	return nil
}

// trapExists turns a uniqueness violation caught by the storage into a validation error.
func trapExists(err error) error {
	if err == ErrRecordExists {
		return core.NewValidationError(err)
	}
	return err
}

// populate fills the class names and localizes the dates of recs.
func (svc *service) populate(ctx context.Context, recs ...Record) ([]Record, error) {
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.classRefIDs()...)
	}
	found, err := svc.classes.GetByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Date = recs[i].Date.In(svc.loc)
		for j := range recs[i].Classes {
			class.PopulateRefs(recs[i].Classes[j].Classes, found)
		}
		for j := range recs[i].ProxyClasses {
			recs[i].ProxyClasses[j].Class.Name = found[recs[i].ProxyClasses[j].Class.ID].Name
		}
		if recs[i].Classes == nil {
			recs[i].Classes = []ClassEntry{}
		}
		if recs[i].ProxyClasses == nil {
			recs[i].ProxyClasses = []ProxyEntry{}
		}
	}
	return recs, nil
}

func (svc *service) populateOne(ctx context.Context, r Record) (Record, error) {
	recs, err := svc.populate(ctx, r)
	if err != nil {
		return Record{}, err
	}
	return recs[0], nil
}

func (svc *service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	now := time.Now().UTC()
	r := Record{
		EmployeeID:    nr.EmployeeID,
		Date:          svc.day(nr.Date),
		Classes:       nr.Classes,
		HasProxyClass: nr.HasProxyClass,
		ProxyClasses:  nr.ProxyClasses,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.Classes == nil {
		r.Classes = []ClassEntry{}
	}

	// check-then-act; a concurrent create may still slip through to the storage unique index
	if err := svc.checkUniqueness(ctx, r); err != nil {
		return Record{}, err
	}
	if err := checkProxies(&r); err != nil {
		return Record{}, err
	}
	if err := svc.checkReferences(ctx, r); err != nil {
		return Record{}, err
	}

	r, err := svc.repo.CreateRecord(ctx, r)
	if err != nil {
		return Record{}, trapExists(err)
	}
	return svc.populateOne(ctx, r)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Record, error) {
	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	return svc.populate(ctx, recs...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Record, error) {
	r, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return svc.populateOne(ctx, r)
}

func (svc *service) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error) {
	r, err := svc.repo.GetRecordByEmployeeAndDate(ctx, employeeID, svc.day(date))
	if err != nil {
		return Record{}, err
	}
	return svc.populateOne(ctx, r)
}

func (svc *service) QueryByMonth(ctx context.Context, month, year int, employeeID string) ([]Record, error) {
	if month < 1 || month > 12 {
		return nil, core.NewFieldValidationError("month", ErrInvalidMonth)
	}
	if year < 1000 || year > 9999 {
		return nil, core.NewFieldValidationError("year", ErrInvalidYear)
	}
	start, end := core.MonthRange(time.Date(year, time.Month(month), 1, 12, 0, 0, 0, svc.loc), svc.loc)
	return svc.Query(ctx, &QueryFilter{EmployeeID: employeeID, From: start, To: end})
}

func (svc *service) Update(ctx context.Context, id string, ur UpdateRecord) (Record, error) {
	r, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if ur.Date != nil {
		r.Date = svc.day(*ur.Date)
		if err := svc.checkUniqueness(ctx, r); err != nil {
			return Record{}, err
		}
	}
	if ur.Classes != nil {
		r.Classes = ur.Classes
	}
	if ur.HasProxyClass != nil {
		r.HasProxyClass = *ur.HasProxyClass
	}
	if ur.ProxyClasses != nil {
		r.ProxyClasses = ur.ProxyClasses
	}
	if err := checkProxies(&r); err != nil {
		return Record{}, err
	}
	if err := svc.checkReferences(ctx, r); err != nil {
		return Record{}, err
	}
	r.UpdatedAt = time.Now().UTC()

	r, err = svc.repo.UpdateRecord(ctx, r)
	if err != nil {
		return Record{}, trapExists(err)
	}
	return svc.populateOne(ctx, r)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRecord(ctx, id)
}

func (svc *service) ListBetween(ctx context.Context, start, end time.Time) ([]Record, error) {
	return svc.Query(ctx, &QueryFilter{From: start, To: end, Ascending: true})
}
