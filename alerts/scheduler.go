package alerts

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TickInterval is how often the scheduler polls for due alerts. Due-ness
// itself comes from each record's own interval arithmetic, so the tick
// rate only bounds dispatch latency.
var TickInterval = 60 * time.Second

var alertSentCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_alerts_sent",
	Help: "Number of recurring alert dispatches, by outcome",
}, []string{"outcome"})

var alertTickSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "steward_alert_ticks_skipped",
	Help: "Number of scheduler ticks skipped because the previous tick was still running",
})

// Sender is the outbound half of the platform client the scheduler needs.
type Sender interface {
	SendMessage(ctx context.Context, groupID int64, text string) error
}

// Scheduler polls the alert store on a fixed tick and dispatches whatever
// is due. Ticks never overlap: if dispatch work is still running when the
// next tick fires, that tick is dropped rather than queued.
type Scheduler struct {
	Store  Store
	Sender Sender
	Logger *slog.Logger
	// bounds outbound sends across all groups; nil means unlimited
	Limiter *rate.Limiter

	ticking atomic.Bool
	exit    chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(store Store, sender Sender, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Store:   store,
		Sender:  sender,
		Logger:  logger.With("component", "alert-scheduler"),
		Limiter: rate.NewLimiter(rate.Limit(10), 10),
		exit:    make(chan struct{}),
	}
}

// DueAlerts returns the subset of stored alerts due at the given instant.
func (s *Scheduler) DueAlerts(ctx context.Context, now time.Time) ([]Alert, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	due := make([]Alert, 0, len(all))
	for _, a := range all {
		if a.Due(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

// Tick runs one poll-and-dispatch pass. Exported so the daemon and tests
// can drive it directly; Start drives it from a timer.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	if !s.ticking.CompareAndSwap(false, true) {
		s.Logger.Warn("previous tick still running, skipping")
		alertTickSkipped.Inc()
		return
	}
	defer s.ticking.Store(false)

	due, err := s.DueAlerts(ctx, now)
	if err != nil {
		s.Logger.Error("failed to list alerts", "err", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.Logger.Info("dispatching due alerts", "count", len(due))

	// one group's failure must not block the others
	var eg errgroup.Group
	for _, alert := range due {
		alert := alert
		eg.Go(func() error {
			s.dispatch(ctx, alert, now)
			return nil
		})
	}
	_ = eg.Wait()
}

func (s *Scheduler) dispatch(ctx context.Context, alert Alert, now time.Time) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return
		}
	}
	if err := s.Sender.SendMessage(ctx, alert.GroupID, alert.Message); err != nil {
		// the record stays; an unreachable group is retried next tick
		s.Logger.Warn("alert send failed", "err", err, "group", alert.GroupID)
		alertSentCount.WithLabelValues("error").Inc()
		return
	}
	// mark immediately so a slow tick can not re-select this alert
	if err := s.Store.MarkSent(ctx, alert.GroupID, now); err != nil {
		// the message went out but the record still looks due; the group
		// may see a duplicate next tick
		s.Logger.Error("failed to mark alert sent", "err", err, "group", alert.GroupID)
		alertSentCount.WithLabelValues("marksent-failed").Inc()
		return
	}
	alertSentCount.WithLabelValues("ok").Inc()
}

// Start launches the polling loop. Stop with Shutdown.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(TickInterval)
		defer t.Stop()
		for {
			select {
			case <-s.exit:
				return
			case <-t.C:
				s.Tick(context.Background(), time.Now())
			}
		}
	}()
}

func (s *Scheduler) Shutdown() {
	s.Logger.Info("stopping alert scheduler")
	close(s.exit)
	s.wg.Wait()
	s.Logger.Info("alert scheduler stopped")
}
