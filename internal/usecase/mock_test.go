//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"class-access/internal/domain"
	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
)

// ---- In-memory store shared by the mock repositories ----

type enrollmentKey struct{ userID, classID string }

// memStore holds codes, enrollments and classes. Every repository operation
// takes mu, so MarkUsed and Create are atomic just like their SQL versions.
type memStore struct {
	mu          sync.Mutex
	codes       map[string]*model.AccessCode
	enrollments map[enrollmentKey]*model.Enrollment
	classes     map[string]*model.Class
}

func newMemStore() *memStore {
	return &memStore{
		codes:       make(map[string]*model.AccessCode),
		enrollments: make(map[enrollmentKey]*model.Enrollment),
		classes:     make(map[string]*model.Class),
	}
}

func copyCode(c *model.AccessCode) *model.AccessCode {
	cp := *c
	if c.UsedBy != nil {
		u := *c.UsedBy
		cp.UsedBy = &u
	}
	if c.UsedAt != nil {
		t := *c.UsedAt
		cp.UsedAt = &t
	}
	return &cp
}

type memSnapshot struct {
	codes       map[string]*model.AccessCode
	enrollments map[enrollmentKey]*model.Enrollment
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		codes:       make(map[string]*model.AccessCode, len(s.codes)),
		enrollments: make(map[enrollmentKey]*model.Enrollment, len(s.enrollments)),
	}
	for k, v := range s.codes {
		snap.codes[k] = copyCode(v)
	}
	for k, v := range s.enrollments {
		cp := *v
		snap.enrollments[k] = &cp
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = snap.codes
	s.enrollments = snap.enrollments
}

func (s *memStore) addCode(code, classID string) *model.AccessCode {
	ac, err := model.NewAccessCode("", code, classID, 100, "")
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = ac
	return copyCode(ac)
}

func (s *memStore) insertCode(c *model.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[c.Code]; ok {
		return domain.ErrAlreadyExists
	}
	s.codes[c.Code] = copyCode(c)
	return nil
}

func (s *memStore) addClass(id string, free bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[id] = &model.Class{ID: id, Title: "class " + id, IsFree: free}
}

func (s *memStore) code(code string) *model.AccessCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil
	}
	return copyCode(c)
}

func (s *memStore) enrollmentCount(userID, classID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[enrollmentKey{userID, classID}]; ok {
		return 1
	}
	return 0
}

// ---- AccessCodeRepository ----

type MockAccessCodeRepo struct {
	store          *memStore
	SaveFunc       func(ctx context.Context, tx repository.Tx, code *model.AccessCode) error
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error)
	MarkUsedFunc   func(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (*model.AccessCode, error)
}

var _ repository.AccessCodeRepository = (*MockAccessCodeRepo)(nil)

func NewMockAccessCodeRepo(store *memStore) *MockAccessCodeRepo {
	return &MockAccessCodeRepo{store: store}
}

func (r *MockAccessCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, code)
	}
	return r.store.insertCode(code)
}

func (r *MockAccessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	if c := r.store.code(code); c != nil {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockAccessCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, at time.Time) (*model.AccessCode, error) {
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, tx, code, userID, at)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.codes[code]
	if !ok {
		return nil, domain.ErrConflict
	}
	if err := c.MarkUsed(userID, at); err != nil {
		return nil, err
	}
	return copyCode(c), nil
}

func (r *MockAccessCodeRepo) ListByClass(ctx context.Context, tx repository.Tx, classID string) ([]*model.AccessCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*model.AccessCode
	for _, c := range r.store.codes {
		if c.ClassID == classID {
			out = append(out, copyCode(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MockAccessCodeRepo) CountByState(ctx context.Context, tx repository.Tx, classID string) (map[model.CodeState]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := map[model.CodeState]int{}
	for _, c := range r.store.codes {
		if c.ClassID == classID {
			out[c.State]++
		}
	}
	return out, nil
}

// ---- EnrollmentRepository ----

type MockEnrollmentRepo struct {
	store      *memStore
	CreateFunc func(ctx context.Context, tx repository.Tx, userID, classID string, at time.Time) (*model.Enrollment, error)
	ExistsFunc func(ctx context.Context, tx repository.Tx, userID, classID string) (bool, error)
}

var _ repository.EnrollmentRepository = (*MockEnrollmentRepo)(nil)

func NewMockEnrollmentRepo(store *memStore) *MockEnrollmentRepo {
	return &MockEnrollmentRepo{store: store}
}

func (r *MockEnrollmentRepo) Exists(ctx context.Context, tx repository.Tx, userID, classID string) (bool, error) {
	if r.ExistsFunc != nil {
		return r.ExistsFunc(ctx, tx, userID, classID)
	}
	return r.store.enrollmentCount(userID, classID) == 1, nil
}

func (r *MockEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, userID, classID string, at time.Time) (*model.Enrollment, error) {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, userID, classID, at)
	}
	e, err := model.NewEnrollment(userID, classID, at)
	if err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := enrollmentKey{userID, classID}
	if _, ok := r.store.enrollments[k]; ok {
		return nil, domain.ErrConflict
	}
	r.store.enrollments[k] = e
	cp := *e
	return &cp, nil
}

func (r *MockEnrollmentRepo) FindByUserAndClass(ctx context.Context, tx repository.Tx, userID, classID string) (*model.Enrollment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.enrollments[enrollmentKey{userID, classID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MockEnrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*model.Enrollment
	for k, e := range r.store.enrollments {
		if k.userID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassID < out[j].ClassID })
	return out, nil
}

func (r *MockEnrollmentRepo) CountByClass(ctx context.Context, tx repository.Tx, classID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for k := range r.store.enrollments {
		if k.classID == classID {
			n++
		}
	}
	return n, nil
}

// ---- ClassRepository ----

type MockClassRepo struct {
	store        *memStore
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Class, error)
}

var _ repository.ClassRepository = (*MockClassRepo)(nil)

func NewMockClassRepo(store *memStore) *MockClassRepo {
	return &MockClassRepo{store: store}
}

func (r *MockClassRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.classes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockClassRepo) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *c
	r.store.classes[c.ID] = &cp
	return nil
}

// ---- TransactionManager ----

// MockTxManager gives the in-memory store transaction semantics: transactions
// run one at a time and a failing fn restores the pre-transaction snapshot.
type MockTxManager struct {
	store      *memStore
	txMu       sync.Mutex
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Commits    int
	Rollbacks  int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager(store *memStore) *MockTxManager {
	return &MockTxManager{store: store}
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx, repository.NoTX); err != nil {
		m.store.restore(snap)
		m.Rollbacks++
		return err
	}
	if err := ctx.Err(); err != nil {
		m.store.restore(snap)
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

// ---- Event publisher ----

type MockEventPublisher struct {
	mu        sync.Mutex
	Err       error
	published []model.AccessGrantedEvent
}

func (p *MockEventPublisher) PublishAccessGranted(ctx context.Context, ev model.AccessGrantedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *MockEventPublisher) Close() error { return nil }

func (p *MockEventPublisher) Published() []model.AccessGrantedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.AccessGrantedEvent(nil), p.published...)
}

// passthroughTx runs fn without isolation, letting concurrent callers interleave
// so the compare-and-set alone has to pick the winner.
func passthroughTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newID() string { return uuid.NewString() }
