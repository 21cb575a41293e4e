package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/employee"
)

const employeeColumns = `id, code, first_name, last_name, short_name, email, primary_phone, employee_type,
	payment_method, payment_per_class, payment_per_month, joining_date, comments, created_at, updated_at`

var employeeOrdering = map[string]string{
	"code":           "code",
	"first_name":     "first_name",
	"last_name":      "last_name",
	"short_name":     "short_name",
	"employee_type":  "employee_type",
	"payment_method": "payment_method",
	"joining_date":   "joining_date",
	"created_at":     "created_at",
}

type employeeRow struct {
	ID              string                         `db:"id"`
	Code            string                         `db:"code"`
	FirstName       string                         `db:"first_name"`
	LastName        string                         `db:"last_name"`
	ShortName       string                         `db:"short_name"`
	Email           null.String                    `db:"email"`
	PrimaryPhone    string                         `db:"primary_phone"`
	Type            string                         `db:"employee_type"`
	PaymentMethod   string                         `db:"payment_method"`
	PaymentPerClass jsonb[[]employee.ClassPayment] `db:"payment_per_class"`
	PaymentPerMonth decimal.NullDecimal            `db:"payment_per_month"`
	JoiningDate     time.Time                      `db:"joining_date"`
	Comments        string                         `db:"comments"`
	CreatedAt       time.Time                      `db:"created_at"`
	UpdatedAt       time.Time                      `db:"updated_at"`
}

type employeeRepository struct {
	db *sqlx.DB
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *sqlx.DB) employee.Repository {
	return &employeeRepository{db: db}
}

func (repo *employeeRepository) toRow(e employee.Employee) employeeRow {
	rows := e.PaymentPerClass
	if rows == nil {
		rows = []employee.ClassPayment{}
	}
	return employeeRow{
		ID:              e.ID,
		Code:            e.Code,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		ShortName:       e.ShortName,
		Email:           null.NewString(e.Email, e.Email != ""),
		PrimaryPhone:    e.PrimaryPhone,
		Type:            string(e.Type),
		PaymentMethod:   string(e.PaymentMethod),
		PaymentPerClass: jsonb[[]employee.ClassPayment]{V: rows},
		PaymentPerMonth: e.PaymentPerMonth,
		JoiningDate:     e.JoiningDate,
		Comments:        e.Comments,
		CreatedAt:       e.CreatedAt.UTC(),
		UpdatedAt:       e.UpdatedAt.UTC(),
	}
}

func (repo *employeeRepository) fromRow(row employeeRow) employee.Employee {
	return employee.Employee{
		ID:              row.ID,
		Code:            row.Code,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		ShortName:       row.ShortName,
		Email:           row.Email.String,
		PrimaryPhone:    row.PrimaryPhone,
		Type:            employee.Type(row.Type),
		PaymentMethod:   employee.PaymentMethod(row.PaymentMethod),
		PaymentPerClass: row.PaymentPerClass.V,
		PaymentPerMonth: row.PaymentPerMonth,
		JoiningDate:     row.JoiningDate,
		Comments:        row.Comments,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func (repo *employeeRepository) CheckContactUniqueness(ctx context.Context, email, phone, excludedID string) error {
	var row struct {
		Email        null.String `db:"email"`
		PrimaryPhone string      `db:"primary_phone"`
	}
	q := `SELECT email, primary_phone FROM employee
		WHERE (email = $1 OR primary_phone = $2) AND id::text <> $3
		LIMIT 1`
	err := repo.db.GetContext(ctx, &row, q, null.NewString(email, email != ""), phone, excludedID)
	if err != nil {
		return trapNoRowsErr(err, nil, "checking employee uniqueness")
	}
	if email != "" && row.Email.String == email {
		return employee.ErrEmailExists
	}
	return employee.ErrPhoneExists
}

func (repo *employeeRepository) EmployeeCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM employee WHERE code = $1)`, code); err != nil {
		return false, errors.Wrap(err, "checking employee code")
	}
	return exists, nil
}

func (repo *employeeRepository) CountEmployees(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM employee`); err != nil {
		return 0, errors.Wrap(err, "counting employees")
	}
	return count, nil
}

func (repo *employeeRepository) CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO employee (` + employeeColumns + `)
		VALUES (:id, :code, :first_name, :last_name, :short_name, :email, :primary_phone, :employee_type,
		:payment_method, :payment_per_class, :payment_per_month, :joining_date, :comments, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.toRow(e)); err != nil {
		return employee.Employee{}, errors.Wrap(err, "inserting employee")
	}
	return e, nil
}

func (repo *employeeRepository) QueryEmployees(ctx context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering) ([]employee.Employee, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("code ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR short_name ILIKE ? OR email ILIKE ? OR primary_phone ILIKE ?",
				val, val, val, val, val, val)
		}
		if filter.Type != "" {
			w.add("employee_type = ?", string(filter.Type))
		}
		if filter.PaymentMethod != "" {
			w.add("payment_method = ?", string(filter.PaymentMethod))
		}
	}
	q := `SELECT ` + employeeColumns + ` FROM employee` + w.String() +
		` ORDER BY ` + core.OrderBy(ordering, employeeOrdering, "created_at DESC") + `, code ASC`

	var rows []employeeRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	emps := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		emps = append(emps, repo.fromRow(row))
	}
	return emps, nil
}

func (repo *employeeRepository) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return employee.Employee{}, employee.ErrNotFound
	}
	var row employeeRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+employeeColumns+` FROM employee WHERE id = $1`, id); err != nil {
		return employee.Employee{}, trapNoRowsErr(err, employee.ErrNotFound, "getting employee")
	}
	return repo.fromRow(row), nil
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := `UPDATE employee SET
		first_name = :first_name, last_name = :last_name, short_name = :short_name, email = :email,
		primary_phone = :primary_phone, employee_type = :employee_type, payment_method = :payment_method,
		payment_per_class = :payment_per_class, payment_per_month = :payment_per_month,
		joining_date = :joining_date, comments = :comments, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.toRow(e))
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "updating employee")
	}
	if err = checkAffected(res, employee.ErrNotFound, "updating employee"); err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

func (repo *employeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employee.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return checkAffected(res, employee.ErrNotFound, "deleting employee")
}
