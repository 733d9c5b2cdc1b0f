package shortlist

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// jobLocks serializes work per job within one process. Entries are dropped once
// no caller holds or waits on them.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*jobLock
}

type jobLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: make(map[string]*jobLock)}
}

// acquire blocks until the job's lock is free or ctx is done.
func (l *jobLocks) acquire(ctx context.Context, jobID string) (release func(), err error) {
	l.mu.Lock()
	jl, ok := l.locks[jobID]
	if !ok {
		jl = &jobLock{sem: semaphore.NewWeighted(1)}
		l.locks[jobID] = jl
	}
	jl.refs++
	l.mu.Unlock()

	if err := jl.sem.Acquire(ctx, 1); err != nil {
		l.unref(jobID, jl)
		return nil, err
	}
	return func() {
		jl.sem.Release(1)
		l.unref(jobID, jl)
	}, nil
}

func (l *jobLocks) unref(jobID string, jl *jobLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	jl.refs--
	if jl.refs == 0 {
		delete(l.locks, jobID)
	}
}

func (l *jobLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
