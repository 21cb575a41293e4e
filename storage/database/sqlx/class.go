package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
)

const classColumns = `id, name, created_at, updated_at`

var classOrdering = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type classRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row classRow) class() class.Class {
	return class.Class{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC()}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) trapUniqueErr(err error, msg string) error {
	if isUniqueViolation(err, "class_name_key") {
		return class.ErrNameExists
	}
	return errors.Wrap(err, msg)
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = uuid.New().String()
	row := classRow{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt.UTC(), UpdatedAt: c.UpdatedAt.UTC()}
	q := `INSERT INTO class (` + classColumns + `) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return class.Class{}, repo.trapUniqueErr(err, "inserting class")
	}
	return c, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	var w where
	if filter != nil && filter.Search != "" {
		w.add("name ILIKE ?", "%"+filter.Search+"%")
	}
	q := `SELECT ` + classColumns + ` FROM class` + w.String() +
		` ORDER BY ` + core.OrderBy(ordering, classOrdering, "name ASC")

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classesFromRows(rows), nil
}

func classesFromRows(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.class())
	}
	return classes
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+classColumns+` FROM class WHERE id = $1`, id); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "getting class")
	}
	return row.class(), nil
}

func (repo *classRepository) GetClassByName(ctx context.Context, name string) (class.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+classColumns+` FROM class WHERE LOWER(name) = LOWER($1)`, name); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "getting class by name")
	}
	return row.class(), nil
}

func (repo *classRepository) GetClassesByIDs(ctx context.Context, ids ...string) ([]class.Class, error) {
	var rows []classRow
	q := `SELECT ` + classColumns + ` FROM class WHERE id = ANY($1::uuid[])`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(validUUIDs(ids))); err != nil {
		return nil, errors.Wrap(err, "getting classes by ids")
	}
	return classesFromRows(rows), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE class SET name = $1, updated_at = $2 WHERE id = $3`,
		c.Name, c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return class.Class{}, repo.trapUniqueErr(err, "updating class")
	}
	if err = checkAffected(res, class.ErrNotFound, "updating class"); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return class.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return checkAffected(res, class.ErrNotFound, "deleting class")
}
