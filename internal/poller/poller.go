package poller

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/forward"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/ledger"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/logger"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
)

type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateAuthRetry  State = "auth_retry"
	StateProcessing State = "processing"
	StateSleeping   State = "sleeping"
	StateStopping   State = "stopping"
)

// SessionManager is the slice of the session the poll loop drives: keeping
// the token fresh and forcing a refresh on the retry path.
type SessionManager interface {
	EnsureAuthenticated(ctx context.Context) error
	Invalidate()
}

// Fetcher runs one windowed hacktivity query.
type Fetcher interface {
	FetchSince(ctx context.Context, since time.Time) ([]hacktivity.Event, error)
}

// Poller drives the fetch -> filter -> forward -> mark cycle on a fixed
// cadence. One goroutine owns the whole cycle; the ledger and session are
// never touched concurrently.
type Poller struct {
	session    SessionManager
	fetcher    Fetcher
	ledger     *ledger.Ledger
	forwarders []forward.Forwarder

	interval time.Duration
	lookback time.Duration
	schedule cron.Schedule

	mu        sync.RWMutex
	state     State
	lastCycle time.Time
	lastErr   error

	// Injectable for tests: cycles can be simulated without wall-clock time.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(sess SessionManager, fetcher Fetcher, led *ledger.Ledger, forwarders []forward.Forwarder, cfg config.PollConfig) (*Poller, error) {
	interval, err := config.DurationOrDefault(cfg.Interval, config.DefaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("parse poll interval: %w", err)
	}
	lookback, err := config.DurationOrDefault(cfg.Lookback, config.DefaultPollLookback)
	if err != nil {
		return nil, fmt.Errorf("parse poll lookback: %w", err)
	}
	if lookback <= interval {
		return nil, errors.InvalidInput(fmt.Sprintf("lookback %s must exceed interval %s so windows overlap", lookback, interval))
	}

	var schedule cron.Schedule
	if cfg.Schedule != "" {
		schedule, err = cron.ParseStandard(cfg.Schedule)
		if err != nil {
			return nil, fmt.Errorf("parse poll schedule %q: %w", cfg.Schedule, err)
		}
	}

	return &Poller{
		session:    sess,
		fetcher:    fetcher,
		ledger:     led,
		forwarders: forwarders,
		interval:   interval,
		lookback:   lookback,
		schedule:   schedule,
		state:      StateIdle,
		now:        time.Now,
		sleep:      sleepContext,
	}, nil
}

// Run loops until ctx is cancelled. Cycle failures are logged and absorbed;
// only cancellation ends the loop.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Poller running", "interval", p.interval, "lookback", p.lookback)

	for {
		select {
		case <-ctx.Done():
			p.setState(StateStopping)
			return ctx.Err()
		default:
		}

		if err := p.RunCycle(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			slog.Error("Polling cycle failed", "error", err)
		}

		p.setState(StateSleeping)
		if err := p.sleep(ctx, p.nextDelay()); err != nil {
			p.setState(StateStopping)
			return err
		}
		p.setState(StateIdle)
	}
}

// RunCycle executes exactly one cycle: window computation, authenticated
// fetch (with the single expired-token retry), then per-event processing.
// The returned error describes why the cycle ended early; per-event delivery
// failures are not cycle failures.
func (p *Poller) RunCycle(ctx context.Context) (err error) {
	cycleID := ulid.Make().String()
	ctx = logger.WithCycleID(ctx, cycleID)

	metrics.CyclesTotal.Inc()
	p.markCycle()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Sprintf("cycle panic: %v", r))
		}
		if err != nil && !stderrors.Is(err, context.Canceled) {
			metrics.CycleFailures.Inc()
		}
		p.setLastErr(err)
	}()

	p.setState(StateFetching)
	events, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	metrics.EventsFetched.Add(float64(len(events)))

	p.setState(StateProcessing)
	p.process(ctx, cycleID, events)

	if pruned := p.ledger.Prune(); pruned > 0 {
		slog.Debug("Ledger pruned", "cycle_id", cycleID, "removed", pruned)
	}
	metrics.LedgerSize.Set(float64(p.ledger.Len()))
	return nil
}

// fetch computes the window and queries it. A fetch rejected with the
// expired-token response gets exactly one invalidate+refresh+refetch; any
// other failure, or a failure after the retry, ends the cycle.
func (p *Poller) fetch(ctx context.Context) ([]hacktivity.Event, error) {
	since := p.now().Add(-p.lookback)

	if err := p.session.EnsureAuthenticated(ctx); err != nil {
		return nil, errors.Wrap(err, "ensure authenticated")
	}

	events, err := p.fetcher.FetchSince(ctx, since)
	if err == nil {
		return events, nil
	}
	if !hacktivity.TokenExpired(err) {
		return nil, errors.Wrap(err, "fetch hacktivity")
	}

	p.setState(StateAuthRetry)
	slog.Info("CSRF token invalid, refreshing...", "cycle_id", logger.GetCycleID(ctx))
	metrics.AuthRefreshes.Inc()

	p.session.Invalidate()
	if err := p.session.EnsureAuthenticated(ctx); err != nil {
		return nil, errors.Wrap(err, "refresh session")
	}

	p.setState(StateFetching)
	events, err = p.fetcher.FetchSince(ctx, since)
	if err != nil {
		return nil, errors.Wrap(err, "fetch hacktivity after token refresh")
	}
	return events, nil
}

// process walks the batch in upstream order. Seen IDs are skipped with no
// side effect; an event is marked seen only after every forwarder accepted
// it, so a delivery failure stays eligible for the next overlapping window.
func (p *Poller) process(ctx context.Context, cycleID string, events []hacktivity.Event) {
	for i := range events {
		ev := &events[i]
		id := ev.ID()
		if id == "" {
			slog.Warn("Skipping event without report ID", "cycle_id", cycleID)
			continue
		}

		if p.ledger.Seen(id) {
			slog.Debug("Ignoring already-seen report", "cycle_id", cycleID, "report_id", id)
			metrics.DuplicatesSkipped.Inc()
			continue
		}

		if err := p.forwardOne(ctx, ev); err != nil {
			slog.Error("Forwarding failed, report stays eligible for retry",
				"cycle_id", cycleID,
				"report_id", id,
				"error", err)
			continue
		}

		p.ledger.Mark(id)
		metrics.EventsForwarded.Inc()
		slog.Info("Disclosure forwarded", "cycle_id", cycleID, "report_id", id, "title", ev.Report.Title)
	}
}

// forwardOne attempts every configured forwarder and reports the combined
// failure. A panic inside a forwarder is contained to this event.
func (p *Poller) forwardOne(ctx context.Context, ev *hacktivity.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Sprintf("forwarder panic: %v", r))
		}
	}()

	var failures []error
	for _, fwd := range p.forwarders {
		if fwdErr := fwd.Forward(ctx, ev); fwdErr != nil {
			metrics.DeliveryFailures.WithLabelValues(fwd.Name()).Inc()
			failures = append(failures, fmt.Errorf("%s: %w", fwd.Name(), fwdErr))
		}
	}
	return stderrors.Join(failures...)
}

func (p *Poller) nextDelay() time.Duration {
	if p.schedule != nil {
		now := p.now()
		return p.schedule.Next(now).Sub(now)
	}
	return p.interval
}

// State returns the loop's current state.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// LastCycle returns when the last cycle started. Zero before the first.
func (p *Poller) LastCycle() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCycle
}

// LastError returns the error the most recent cycle ended with, nil when it
// completed.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) markCycle() {
	p.mu.Lock()
	p.lastCycle = p.now()
	p.mu.Unlock()
}

func (p *Poller) setLastErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// sleepContext is a cancellable wait between cycles.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
