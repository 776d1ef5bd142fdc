package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/llm"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/pages"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================
//
// Hand-written in-memory fakes: each one is a few lines and you can see
// exactly what it does.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountRepo implements repository.AccountRepository.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	// set to simulate database failures
	createErr error
	getErr    error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]model.Account)}
}

func (f *fakeAccountRepo) CreateAccount(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.accounts[a.Email]; ok {
		return apperror.DuplicateAccount(a.Email)
	}
	f.accounts[a.Email] = *a
	return nil
}

func (f *fakeAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.accounts[email]
	if !ok {
		return nil, apperror.NotFound("account", email)
	}
	return &a, nil
}

// fakeBioRepo implements repository.BioRepository, keeping insertion order.
type fakeBioRepo struct {
	mu        sync.Mutex
	bios      []model.Bio
	createErr error
	listErr   error
}

func (f *fakeBioRepo) CreateBio(_ context.Context, b *model.Bio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.bios {
		if existing.ID == b.ID {
			return apperror.IdentifierCollision(b.ID)
		}
	}
	f.bios = append(f.bios, *b)
	return nil
}

func (f *fakeBioRepo) ListBiosByOwner(_ context.Context, owner string) ([]model.Bio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Bio{}
	for _, b := range f.bios {
		if b.OwnerEmail == owner {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBioRepo) ListAllBios(_ context.Context) ([]model.Bio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Bio{}, f.bios...), nil
}

func (f *fakeBioRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bios)
}

// fakeCompleter implements llm.Completer. Each call pops the next scripted
// error (nil means success with reply). When block is set it waits for the
// context instead.
type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	errs    []error
	block   bool
	calls   int
	lastReq llm.Request
}

var errModelDown = errors.New("model is down")

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return f.reply, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePageStore implements pages.Store. The first failWrites writes fail.
type fakePageStore struct {
	mu         sync.Mutex
	docs       map[string]pages.Page
	failWrites int
	writes     int
	readErr    error
}

func newFakePageStore() *fakePageStore {
	return &fakePageStore{docs: make(map[string]pages.Page)}
}

func (f *fakePageStore) Write(_ context.Context, p pages.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failWrites > 0 {
		f.failWrites--
		return errors.New("disk full")
	}
	f.docs[p.ID] = p
	return nil
}

func (f *fakePageStore) Read(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	p, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("page", id)
	}
	return pages.Render(p)
}

func (f *fakePageStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}
