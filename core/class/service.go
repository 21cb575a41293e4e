package class

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/tuition/core"
)

var (
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		// QueryClasses does a case-insensitive match of QueryFilter.Search on Class.Name.
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		GetClassByName(ctx context.Context, name string) (Class, error)
		GetClassesByIDs(ctx context.Context, ids ...string) ([]Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	// Lookup resolves class references; it is all other modules need from this one.
	Lookup interface {
		GetByIDs(ctx context.Context, ids ...string) (map[string]Class, error)
	}

	Service interface {
		Lookup

		Create(ctx context.Context, nc NewClass) (Class, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) checkNameUniqueness(ctx context.Context, name string, excludedID string) error {
	c, err := svc.repo.GetClassByName(ctx, name)
	switch {
	case err == ErrNotFound:
		return nil
	case err != nil:
		return err
	case c.ID != excludedID:
		return core.NewFieldValidationError("name", ErrNameExists)
	}
	return nil
}

func trapNameExists(err error) error {
	if err == ErrNameExists {
		return core.NewFieldValidationError("name", err)
	}
	return err
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := svc.checkNameUniqueness(ctx, nc.Name, ""); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	c, err := svc.repo.CreateClass(ctx, Class{Name: nc.Name, CreatedAt: now, UpdatedAt: now})
	return c, trapNameExists(err)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *service) GetByIDs(ctx context.Context, ids ...string) (map[string]Class, error) {
	found := make(map[string]Class, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	classes, err := svc.repo.GetClassesByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		found[c.ID] = c
	}
	return found, nil
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if err := svc.checkNameUniqueness(ctx, uc.Name, c.ID); err != nil {
		return Class{}, err
	}
	c.Name = uc.Name
	c.UpdatedAt = time.Now().UTC()
	c, err = svc.repo.UpdateClass(ctx, c)
	return c, trapNameExists(err)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
