package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/classcount"
)

const classCountColumns = `id, employee_id, day, classes, has_proxy_class, proxy_classes, created_at, updated_at`

type classCountRow struct {
	ID            string                         `db:"id"`
	EmployeeID    string                         `db:"employee_id"`
	Day           time.Time                      `db:"day"`
	Classes       jsonb[[]classcount.ClassEntry] `db:"classes"`
	HasProxyClass bool                           `db:"has_proxy_class"`
	ProxyClasses  jsonb[[]classcount.ProxyEntry] `db:"proxy_classes"`
	CreatedAt     time.Time                      `db:"created_at"`
	UpdatedAt     time.Time                      `db:"updated_at"`
}

type classCountRepository struct {
	db *sqlx.DB
}

var _ classcount.Repository = (*classCountRepository)(nil) // interface compliance check

func NewClassCountRepository(db *sqlx.DB) classcount.Repository {
	return &classCountRepository{db: db}
}

func (repo *classCountRepository) toRow(r classcount.Record) classCountRow {
	row := classCountRow{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Day:           r.Date,
		Classes:       jsonb[[]classcount.ClassEntry]{V: r.Classes},
		HasProxyClass: r.HasProxyClass,
		ProxyClasses:  jsonb[[]classcount.ProxyEntry]{V: r.ProxyClasses},
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if row.Classes.V == nil {
		row.Classes.V = []classcount.ClassEntry{}
	}
	if row.ProxyClasses.V == nil {
		row.ProxyClasses.V = []classcount.ProxyEntry{}
	}
	return row
}

func (repo *classCountRepository) fromRow(row classCountRow) classcount.Record {
	return classcount.Record{
		ID:            row.ID,
		EmployeeID:    row.EmployeeID,
		Date:          row.Day,
		Classes:       row.Classes.V,
		HasProxyClass: row.HasProxyClass,
		ProxyClasses:  row.ProxyClasses.V,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (repo *classCountRepository) trapUniqueErr(err error, msg string) error {
	if isUniqueViolation(err, "class_count_employee_day_key") {
		return classcount.ErrRecordExists
	}
	return errors.Wrap(err, msg)
}

func (repo *classCountRepository) RecordExists(ctx context.Context, employeeID string, date time.Time, excludedID string) (bool, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return false, nil
	}
	var exists bool
	q := `SELECT EXISTS(SELECT 1 FROM class_count WHERE employee_id = $1 AND day = $2 AND id::text <> $3)`
	if err := repo.db.GetContext(ctx, &exists, q, employeeID, date, excludedID); err != nil {
		return false, errors.Wrap(err, "checking class count existence")
	}
	return exists, nil
}

func (repo *classCountRepository) CreateRecord(ctx context.Context, r classcount.Record) (classcount.Record, error) {
	r.ID = uuid.New().String()
	q := `INSERT INTO class_count (` + classCountColumns + `)
		VALUES (:id, :employee_id, :day, :classes, :has_proxy_class, :proxy_classes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.toRow(r)); err != nil {
		return classcount.Record{}, repo.trapUniqueErr(err, "inserting class count")
	}
	return r, nil
}

func (repo *classCountRepository) QueryRecords(ctx context.Context, filter *classcount.QueryFilter) ([]classcount.Record, error) {
	var w where
	order := "day DESC, created_at ASC"
	if filter != nil {
		if filter.EmployeeID != "" {
			if _, err := uuid.Parse(filter.EmployeeID); err != nil {
				return []classcount.Record{}, nil
			}
			w.add("employee_id = ?", filter.EmployeeID)
		}
		if !filter.From.IsZero() {
			w.add("day >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			w.add("day <= ?", filter.To)
		}
		if filter.Ascending {
			order = "day ASC, created_at ASC"
		}
	}
	q := `SELECT ` + classCountColumns + ` FROM class_count` + w.String() + ` ORDER BY ` + order

	var rows []classCountRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying class counts")
	}
	recs := make([]classcount.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, repo.fromRow(row))
	}
	return recs, nil
}

func (repo *classCountRepository) GetRecord(ctx context.Context, id string) (classcount.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return classcount.Record{}, classcount.ErrNotFound
	}
	var row classCountRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+classCountColumns+` FROM class_count WHERE id = $1`, id); err != nil {
		return classcount.Record{}, trapNoRowsErr(err, classcount.ErrNotFound, "getting class count")
	}
	return repo.fromRow(row), nil
}

func (repo *classCountRepository) GetRecordByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (classcount.Record, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return classcount.Record{}, classcount.ErrNotFound
	}
	var row classCountRow
	q := `SELECT ` + classCountColumns + ` FROM class_count WHERE employee_id = $1 AND day = $2`
	if err := repo.db.GetContext(ctx, &row, q, employeeID, date); err != nil {
		return classcount.Record{}, trapNoRowsErr(err, classcount.ErrNotFound, "getting class count by employee and date")
	}
	return repo.fromRow(row), nil
}

func (repo *classCountRepository) UpdateRecord(ctx context.Context, r classcount.Record) (classcount.Record, error) {
	q := `UPDATE class_count SET
		day = :day, classes = :classes, has_proxy_class = :has_proxy_class,
		proxy_classes = :proxy_classes, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.toRow(r))
	if err != nil {
		return classcount.Record{}, repo.trapUniqueErr(err, "updating class count")
	}
	if err = checkAffected(res, classcount.ErrNotFound, "updating class count"); err != nil {
		return classcount.Record{}, err
	}
	return r, nil
}

func (repo *classCountRepository) DeleteRecord(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return classcount.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class_count WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class count")
	}
	return checkAffected(res, classcount.ErrNotFound, "deleting class count")
}
