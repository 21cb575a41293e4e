package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// jsonb stores a nested document part in a JSONB column.
// The raw column goes through types.JSONText; V is its decoded form.
type jsonb[T any] struct {
	V T
}

func (j jsonb[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, errors.Wrap(err, "encoding jsonb")
	}
	return types.JSONText(data).Value()
}

func (j *jsonb[T]) Scan(src interface{}) error {
	var zero T
	j.V = zero
	if src == nil {
		return nil
	}

	var raw types.JSONText
	if err := raw.Scan(src); err != nil {
		return errors.Wrapf(err, "jsonb: cannot scan %T", src)
	}
	return errors.Wrap(raw.Unmarshal(&j.V), "decoding jsonb")
}

// trapNoRowsErr maps "no rows" to notFound and wraps anything else.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation tells whether err was raised by the named unique constraint.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

// validUUIDs drops the ids postgres would refuse to cast.
func validUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

// where accumulates AND-ed conditions written with "?" bindvars.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, "("+cond+")")
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func checkAffected(res sql.Result, notFound error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
