package store

import "sync"

// Guard serializes access to the sync queue and lets the repository be
// detached (sign-out) and reattached (sign-in) while syncers keep running.
//
// The lock is held only for the duration of fn in [Guard.With]; callers must
// not perform network I/O inside it.
type Guard struct {
	mu   sync.Mutex
	repo SyncRecordRepository
}

// NewGuard returns a guard holding repo. A nil repo starts detached.
func NewGuard(repo SyncRecordRepository) *Guard {
	return &Guard{repo: repo}
}

// Attach replaces the guarded repository.
func (g *Guard) Attach(repo SyncRecordRepository) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.repo = repo
}

// Detach removes and returns the guarded repository.
func (g *Guard) Detach() SyncRecordRepository {
	g.mu.Lock()
	defer g.mu.Unlock()
	repo := g.repo
	g.repo = nil
	return repo
}

// Attached reports whether a repository is present.
func (g *Guard) Attached() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.repo != nil
}

// With runs fn with the repository under the lock. It returns
// [ErrStorageDetached] when nothing is attached.
func (g *Guard) With(fn func(repo SyncRecordRepository) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.repo == nil {
		return ErrStorageDetached
	}
	return fn(g.repo)
}
