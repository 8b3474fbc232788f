package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/logging"
)

// LikesReconciler rewrites drifted like counters from their likedBy arrays.
type LikesReconciler interface {
	ReconcileLikes(ctx context.Context) (int, error)
}

// jobTimeout bounds a single run.
const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron  *cron.Cron
	likes LikesReconciler
	log   *zap.Logger
}

func NewScheduler(likes LikesReconciler, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		likes: likes,
		log:   log,
	}
}

// Start schedules likes reconciliation with a standard five-field spec (or a descriptor
// such as "@daily") and starts the scheduler. An empty spec leaves the job disabled.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.log.Info("likes reconciliation disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.reconcileLikes); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("cron scheduler started", zap.String("likes_reconcile", spec))
	return nil
}

// Stop stops scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) reconcileLikes() {
	ctx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), s.log), jobTimeout)
	defer cancel()

	start := time.Now()
	fixed, err := s.likes.ReconcileLikes(ctx)
	if err != nil {
		s.log.Error("likes reconciliation failed", zap.Error(err))
		return
	}
	s.log.Info("likes reconciliation completed",
		zap.Int("fixed", fixed), zap.Duration("took", time.Since(start)))
}
