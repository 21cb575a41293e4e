package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/employee"
)

type employeeRepository struct {
	db *employeeTable
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db.employee}
}

func copyEmployee(e employee.Employee) employee.Employee {
	if e.PaymentPerClass != nil {
		rows := make([]employee.ClassPayment, len(e.PaymentPerClass))
		for i, row := range e.PaymentPerClass {
			rows[i] = employee.ClassPayment{
				Classes: append([]class.Ref(nil), row.Classes...),
				Amount:  row.Amount,
			}
		}
		e.PaymentPerClass = rows
	}
	return e
}

func (repo *employeeRepository) CheckContactUniqueness(_ context.Context, email, phone, excludedID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.table {
		if e.ID == excludedID {
			continue
		}
		if email != "" && e.Email == email {
			return employee.ErrEmailExists
		}
		if phone != "" && e.PrimaryPhone == phone {
			return employee.ErrPhoneExists
		}
	}
	return nil
}

func (repo *employeeRepository) EmployeeCodeExists(_ context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.table {
		if e.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *employeeRepository) CountEmployees(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *employeeRepository) CreateEmployee(_ context.Context, e employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	stored := copyEmployee(e)
	repo.db.table[e.ID] = &stored
	return copyEmployee(e), nil
}

func (repo *employeeRepository) QueryEmployees(_ context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering) ([]employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	emps := make([]employee.Employee, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		if filter != nil && !matchEmployee(*e, filter) {
			continue
		}
		emps = append(emps, copyEmployee(*e))
	}

	fields := map[string]comparator{
		"code":           func(i, j int) int { return strings.Compare(emps[i].Code, emps[j].Code) },
		"first_name":     func(i, j int) int { return strings.Compare(emps[i].FirstName, emps[j].FirstName) },
		"last_name":      func(i, j int) int { return strings.Compare(emps[i].LastName, emps[j].LastName) },
		"short_name":     func(i, j int) int { return strings.Compare(emps[i].ShortName, emps[j].ShortName) },
		"employee_type":  func(i, j int) int { return strings.Compare(string(emps[i].Type), string(emps[j].Type)) },
		"joining_date":   func(i, j int) int { return emps[i].JoiningDate.Compare(emps[j].JoiningDate) },
		"created_at":     func(i, j int) int { return emps[i].CreatedAt.Compare(emps[j].CreatedAt) },
		"payment_method": func(i, j int) int { return strings.Compare(string(emps[i].PaymentMethod), string(emps[j].PaymentMethod)) },
	}
	newestFirst := func(i, j int) int {
		if c := emps[j].CreatedAt.Compare(emps[i].CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(emps[i].Code, emps[j].Code)
	}
	sortBy(len(emps), func(i, j int) { emps[i], emps[j] = emps[j], emps[i] }, ordering, fields, newestFirst)
	return emps, nil
}

func matchEmployee(e employee.Employee, filter *employee.QueryFilter) bool {
	if filter.Type != "" && e.Type != filter.Type {
		return false
	}
	if filter.PaymentMethod != "" && e.PaymentMethod != filter.PaymentMethod {
		return false
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		for _, field := range []string{e.Code, e.FirstName, e.LastName, e.ShortName, e.Email, e.PrimaryPhone} {
			if strings.Contains(strings.ToLower(field), s) {
				return true
			}
		}
		return false
	}
	return true
}

func (repo *employeeRepository) GetEmployee(_ context.Context, id string) (employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return copyEmployee(*e), nil
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) UpdateEmployee(_ context.Context, e employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[e.ID]; !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	stored := copyEmployee(e)
	repo.db.table[e.ID] = &stored
	return copyEmployee(e), nil
}

func (repo *employeeRepository) DeleteEmployee(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return employee.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
