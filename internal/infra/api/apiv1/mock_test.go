//go:build !integration

package apiv1_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
)

// memDB backs all three repositories with maps under one mutex.
type memDB struct {
	mu          sync.Mutex
	classes     map[string]*model.Class
	codes       map[string]*model.AccessCode
	enrollments map[[2]string]*model.Enrollment

	errExists error
}

func newMemDB() *memDB {
	return &memDB{
		classes:     map[string]*model.Class{},
		codes:       map[string]*model.AccessCode{},
		enrollments: map[[2]string]*model.Enrollment{},
	}
}

type memCodes struct{ db *memDB }
type memEnrollments struct{ db *memDB }
type memClasses struct{ db *memDB }

func (m memCodes) Save(ctx context.Context, tx repository.Tx, c *model.AccessCode) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.codes[c.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *c
	m.db.codes[c.Code] = &cp
	return nil
}

func (m memCodes) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCodes) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (*model.AccessCode, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.codes[code]
	if !ok {
		return nil, domain.ErrConflict
	}
	if err := c.MarkUsed(userID, at); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (m memCodes) ListByClass(ctx context.Context, tx repository.Tx, classID string) ([]*model.AccessCode, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.AccessCode
	for _, c := range m.db.codes {
		if c.ClassID == classID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memCodes) CountByState(ctx context.Context, tx repository.Tx, classID string) (map[model.CodeState]int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := map[model.CodeState]int{}
	for _, c := range m.db.codes {
		if c.ClassID == classID {
			out[c.State]++
		}
	}
	return out, nil
}

func (m memEnrollments) Exists(ctx context.Context, tx repository.Tx, userID, classID string) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.errExists != nil {
		return false, m.db.errExists
	}
	_, ok := m.db.enrollments[[2]string{userID, classID}]
	return ok, nil
}

func (m memEnrollments) Create(ctx context.Context, tx repository.Tx, userID, classID string, at time.Time) (*model.Enrollment, error) {
	e, err := model.NewEnrollment(userID, classID, at)
	if err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	k := [2]string{userID, classID}
	if _, ok := m.db.enrollments[k]; ok {
		return nil, domain.ErrConflict
	}
	m.db.enrollments[k] = e
	cp := *e
	return &cp, nil
}

func (m memEnrollments) FindByUserAndClass(ctx context.Context, tx repository.Tx, userID, classID string) (*model.Enrollment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.enrollments[[2]string{userID, classID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m memEnrollments) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Enrollment
	for k, e := range m.db.enrollments {
		if k[0] == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memEnrollments) CountByClass(ctx context.Context, tx repository.Tx, classID string) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	n := 0
	for k := range m.db.enrollments {
		if k[1] == classID {
			n++
		}
	}
	return n, nil
}

func (m memClasses) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.classes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memClasses) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *c
	m.db.classes[c.ID] = &cp
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
