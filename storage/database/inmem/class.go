package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db.class}
}

// nameTaken mirrors the case-insensitive unique index on names; callers hold the lock.
func (repo *classRepository) nameTaken(name, excludedID string) bool {
	for _, c := range repo.db.table {
		if c.ID != excludedID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (repo *classRepository) CreateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(c.Name, "") {
		return class.Class{}, class.ErrNameExists
	}
	c.ID = uuid.New().String()
	stored := c
	repo.db.table[c.ID] = &stored
	return c, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter != nil && filter.Search != "" &&
			!strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		classes = append(classes, *c)
	}

	fields := map[string]comparator{
		"name":       func(i, j int) int { return strings.Compare(classes[i].Name, classes[j].Name) },
		"created_at": func(i, j int) int { return classes[i].CreatedAt.Compare(classes[j].CreatedAt) },
	}
	byName := func(i, j int) int { return strings.Compare(classes[i].Name, classes[j].Name) }
	sortBy(len(classes), func(i, j int) { classes[i], classes[j] = classes[j], classes[i] }, ordering, fields, byName)
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetClassByName(_ context.Context, name string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.table {
		if strings.EqualFold(c.Name, name) {
			return *c, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetClassesByIDs(_ context.Context, ids ...string) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool, len(ids))
	classes := make([]class.Class, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := repo.db.table[id]; ok {
			classes = append(classes, *c)
		}
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[c.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	if repo.nameTaken(c.Name, c.ID) {
		return class.Class{}, class.ErrNameExists
	}
	stored := c
	repo.db.table[c.ID] = &stored
	return c, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return class.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
