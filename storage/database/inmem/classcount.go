package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
)

type classCountRepository struct {
	db *classCountTable
}

var _ classcount.Repository = (*classCountRepository)(nil) // interface compliance check

func NewClassCountRepository(db *DB) classcount.Repository {
	return &classCountRepository{db: db.classCount}
}

func copyRecord(r classcount.Record) classcount.Record {
	if r.Classes != nil {
		entries := make([]classcount.ClassEntry, len(r.Classes))
		for i, entry := range r.Classes {
			entry.Classes = append([]class.Ref(nil), entry.Classes...)
			entries[i] = entry
		}
		r.Classes = entries
	}
	if r.ProxyClasses != nil {
		r.ProxyClasses = append([]classcount.ProxyEntry{}, r.ProxyClasses...)
	}
	return r
}

func (repo *classCountRepository) RecordExists(_ context.Context, employeeID string, date time.Time, excludedID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.table {
		if r.ID != excludedID && r.EmployeeID == employeeID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classCountRepository) CreateRecord(_ context.Context, r classcount.Record) (classcount.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// mirrors the (employee_id, day) unique index
	for _, other := range repo.db.table {
		if other.EmployeeID == r.EmployeeID && other.Date.Equal(r.Date) {
			return classcount.Record{}, classcount.ErrRecordExists
		}
	}

	r.ID = uuid.New().String()
	stored := copyRecord(r)
	repo.db.table[r.ID] = &stored
	return copyRecord(r), nil
}

func (repo *classCountRepository) QueryRecords(_ context.Context, filter *classcount.QueryFilter) ([]classcount.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = &classcount.QueryFilter{}
	}
	recs := make([]classcount.Record, 0)
	for _, r := range repo.db.table {
		switch {
		case filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID:
			continue
		case !filter.From.IsZero() && r.Date.Before(filter.From):
			continue
		case !filter.To.IsZero() && r.Date.After(filter.To):
			continue
		}
		recs = append(recs, copyRecord(*r))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date) {
			if filter.Ascending {
				return recs[i].Date.Before(recs[j].Date)
			}
			return recs[i].Date.After(recs[j].Date)
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

func (repo *classCountRepository) GetRecord(_ context.Context, id string) (classcount.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return copyRecord(*r), nil
	}
	return classcount.Record{}, classcount.ErrNotFound
}

func (repo *classCountRepository) GetRecordByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (classcount.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.table {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			return copyRecord(*r), nil
		}
	}
	return classcount.Record{}, classcount.ErrNotFound
}

func (repo *classCountRepository) UpdateRecord(_ context.Context, r classcount.Record) (classcount.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[r.ID]; !ok {
		return classcount.Record{}, classcount.ErrNotFound
	}
	for _, other := range repo.db.table {
		if other.ID != r.ID && other.EmployeeID == r.EmployeeID && other.Date.Equal(r.Date) {
			return classcount.Record{}, classcount.ErrRecordExists
		}
	}
	stored := copyRecord(r)
	repo.db.table[r.ID] = &stored
	return copyRecord(r), nil
}

func (repo *classCountRepository) DeleteRecord(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return classcount.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
