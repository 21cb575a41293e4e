package classcount

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
)

// ClassEntry is a number of periods taught in one or more classes.
type ClassEntry struct {
	Classes  []class.Ref `json:"classes" validate:"required,min=1,dive"`
	Count    int         `json:"count" validate:"gte=0"`
	Comments string      `json:"comments,omitempty" validate:"omitempty,max=255"`
}

// ProxyEntry is one period taught as a substitute; it always counts as a single class.
type ProxyEntry struct {
	EmployeeID string    `json:"employee_id" validate:"required,uuid"` // the teacher being substituted
	Class      class.Ref `json:"class"`
	Comments   string    `json:"comments,omitempty" validate:"omitempty,max=255"`
}

// Record is the daily class count of a teacher. There is at most one per teacher and day.
type Record struct {
	ID            string       `json:"id"`
	EmployeeID    string       `json:"employee_id"`
	Date          time.Time    `json:"date"`
	Classes       []ClassEntry `json:"classes"`
	HasProxyClass bool         `json:"has_proxy_class"`
	ProxyClasses  []ProxyEntry `json:"proxy_classes"`
	CreatedAt     time.Time    `json:"created_at"` // UTC
	UpdatedAt     time.Time    `json:"updated_at"` // UTC
}

func (r Record) classRefIDs() []string {
	var ids []string
	for _, entry := range r.Classes {
		ids = append(ids, class.RefIDs(entry.Classes)...)
	}
	for _, proxy := range r.ProxyClasses {
		ids = append(ids, proxy.Class.ID)
	}
	return ids
}

// NewRecord contains information needed to create a new Record.
type NewRecord struct {
	EmployeeID    string       `json:"employee_id" validate:"required,uuid"`
	Date          time.Time    `json:"date" validate:"required"`
	Classes       []ClassEntry `json:"classes" validate:"omitempty,dive"`
	HasProxyClass bool         `json:"has_proxy_class"`
	ProxyClasses  []ProxyEntry `json:"proxy_classes" validate:"omitempty,dive"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.EmployeeID = core.CleanString(nr.EmployeeID)
	return validate.Struct(nr)
}

// UpdateRecord defines what information may be provided to correct an existing Record.
// Nil fields are left untouched.
type UpdateRecord struct {
	Date          *time.Time   `json:"date"`
	Classes       []ClassEntry `json:"classes" validate:"omitempty,dive"`
	HasProxyClass *bool        `json:"has_proxy_class"`
	ProxyClasses  []ProxyEntry `json:"proxy_classes" validate:"omitempty,dive"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	return validate.Struct(ur)
}

type QueryFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Ascending  bool // by date; newest first otherwise
}
