package class

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuition/core"
)

type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Numeral is the grade encoded at the start of the class name.
func (c Class) Numeral() (int, bool) { return Numeral(c.Name) }

// Ref is a class reference embedded in other documents.
// Name is filled from the class directory on read.
type Ref struct {
	ID   string `json:"id" validate:"required,uuid"`
	Name string `json:"name,omitempty"`
}

func (r Ref) Numeral() (int, bool) { return Numeral(r.Name) }

// Numeral parses the leading integer of name: leading whitespace and an optional sign are accepted,
// parsing stops at the first non digit. "10 Science" is 10, "Nine" has no numeral.
func Numeral(name string) (int, bool) {
	s := strings.TrimLeftFunc(name, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n, digits int
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if digits > 9 { // out of any grade range
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// RefIDs returns the ids of refs.
func RefIDs(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

// PopulateRefs sets the name of each ref found in classes; unknown refs get an empty name.
func PopulateRefs(refs []Ref, classes map[string]Class) []Ref {
	for i := range refs {
		refs[i].Name = classes[refs[i].ID].Name
	}
	return refs
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
