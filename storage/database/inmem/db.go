package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/user"
)

type (
	// DB is an in-memory store; each table is guarded by its own lock.
	DB struct {
		user       *userTable
		class      *classTable
		employee   *employeeTable
		classCount *classCountTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	classTable struct {
		sync.RWMutex
		table map[string]*class.Class
	}

	employeeTable struct {
		sync.RWMutex
		table map[string]*employee.Employee
	}

	classCountTable struct {
		sync.RWMutex
		table map[string]*classcount.Record
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		class:      &classTable{table: make(map[string]*class.Class)},
		employee:   &employeeTable{table: make(map[string]*employee.Employee)},
		classCount: &classCountTable{table: make(map[string]*classcount.Record)},
	}
}

// comparator returns <0, 0 or >0 like strings.Compare.
type comparator func(i, j int) int

// sortBy sorts n items by ordering; unknown fields are skipped, ties fall back to fallback.
func sortBy(n int, swap func(i, j int), ordering []core.DBOrdering, fields map[string]comparator, fallback comparator) {
	less := func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := fields[ord.Field]
			if !ok {
				continue
			}
			if c := cmp(i, j); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return fallback(i, j) < 0
	}
	sort.Sort(&sorter{n: n, swap: swap, less: less})
}

type sorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s *sorter) Len() int           { return s.n }
func (s *sorter) Swap(i, j int)      { s.swap(i, j) }
func (s *sorter) Less(i, j int) bool { return s.less(i, j) }

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
