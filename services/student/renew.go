package student

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mazen160/go-random"

	"ntpuassist-backend/lib/timezone"
)

// RenewTask is the handle for one background cache renewal sweep.
// Cancel is safe to call more than once; Done closes when the sweep
// has fully stopped.
type RenewTask struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (t *RenewTask) Cancel() {
	t.stopOnce.Do(t.cancel)
}

func (t *RenewTask) Done() <-chan struct{} {
	return t.done
}

// StartRenewal launches a background sweep that warms the id cache
// with every roster of the last six enrollment years, oldest first,
// departments in table order. A random pause between requests keeps
// the portal from seeing a burst. Any previously running sweep is
// cancelled first. ctx is remembered as the parent of every later
// restart, so it must outlive the service, not a single request.
func (s *Service) StartRenewal(ctx context.Context) *RenewTask {
	s.renewMu.Lock()
	defer s.renewMu.Unlock()
	s.renewCtx = ctx
	return s.startRenewalLocked()
}

func (s *Service) startRenewalLocked() *RenewTask {
	if s.renew != nil {
		s.renew.Cancel()
		<-s.renew.Done()
	}

	ctx, cancel := context.WithCancel(s.renewCtx)
	task := &RenewTask{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.renew = task

	go func() {
		defer close(task.done)
		s.renewDaemon(ctx)
	}()
	return task
}

// restartRenewal replaces the running sweep with a fresh one parented
// on the context StartRenewal was given. A no-op until StartRenewal
// has been called once.
func (s *Service) restartRenewal() {
	s.renewMu.Lock()
	defer s.renewMu.Unlock()
	if s.renewCtx == nil {
		return
	}
	s.startRenewalLocked()
}

func (s *Service) renewDaemon(ctx context.Context) {
	current := timezone.ROCYear(timezone.Now())
	for year := current - 5; year <= current; year++ {
		for _, code := range AllDepartmentCodes {
			if ctx.Err() != nil {
				return
			}
			if _, err := s.GetStudentsByYearAndDepartment(ctx, year, code); err != nil {
				slog.WarnContext(ctx, "roster renewal failed",
					"err", err, "year", year, "department", code)
			}
			if !sleepJitter(ctx) {
				return
			}
		}
	}
	slog.InfoContext(ctx, "roster renewal finished", "students", s.cache.Len())
}

// sleepJitter pauses 5 to 10 seconds, returning false when the context
// is cancelled during the pause.
func sleepJitter(ctx context.Context) bool {
	ms, err := random.IntRange(5000, 10000)
	if err != nil {
		ms = 7500
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return true
	}
}
