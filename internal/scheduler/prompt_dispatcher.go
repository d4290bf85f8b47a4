package scheduler

import (
	"context"
	"sync"
	"time"

	"circles/internal/domain/notification"
	"circles/internal/domain/prompt"
	"circles/internal/repository"
	"circles/internal/services"
	"circles/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInterval = time.Minute
	// Prompts revealed longer ago than this are no longer considered.
	defaultRetention = 48 * time.Hour
)

// PromptDispatcher sends the scheduled prompt notifications: opening, the
// closing reminder and voting. Every (prompt, kind) is claimed in the store
// before fan-out so concurrent instances never send twice.
type PromptDispatcher struct {
	prompts   repository.PromptRepository
	groups    repository.GroupRepository
	notifier  services.Notifier
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

func NewPromptDispatcher(prompts repository.PromptRepository, groups repository.GroupRepository, notifier services.Notifier, interval time.Duration, l *logger.Logger) *PromptDispatcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &PromptDispatcher{
		prompts:   prompts,
		groups:    groups,
		notifier:  notifier,
		log:       l.Named("prompt_dispatcher"),
		interval:  interval,
		retention: defaultRetention,
		now:       time.Now,
	}
}

// Start begins the worker loop. The first tick runs immediately.
func (d *PromptDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stopChan = make(chan struct{})
	d.wg.Add(1)
	go d.run(d.stopChan)
}

// Stop gracefully shuts down
func (d *PromptDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopChan)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *PromptDispatcher) run(stop <-chan struct{}) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.tickLogged()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.tickLogged()
		}
	}
}

func (d *PromptDispatcher) tickLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), d.interval)
	defer cancel()
	sent, err := d.Tick(ctx, d.now())
	if err != nil {
		d.log.Logger.Error("prompt dispatch tick", zap.Error(err))
		return
	}
	if sent > 0 {
		d.log.Logger.Info("prompt notifications sent", zap.Int("recipients", sent))
	}
}

// Tick claims every milestone that is due at now and notifies all group
// members. When several milestones of one prompt are claimed together, only
// the latest is sent. It returns the number of notifications emitted.
func (d *PromptDispatcher) Tick(ctx context.Context, now time.Time) (int, error) {
	due, err := d.prompts.ListForDispatch(ctx, now, now.Add(-d.retention))
	if err != nil {
		return 0, err
	}

	var recipients []uuid.UUID
	loaded := false
	sent := 0
	for _, p := range due {
		kind, err := d.claim(ctx, p, now)
		if err != nil {
			return sent, err
		}
		if kind == "" {
			continue
		}

		payload, err := notification.ForDispatch(kind, p.ID)
		if err != nil {
			return sent, err
		}
		if !loaded {
			if recipients, err = d.groups.ListAllMemberIDs(ctx); err != nil {
				return sent, err
			}
			loaded = true
		}
		for _, id := range recipients {
			d.notifier.Emit(ctx, id, payload)
		}
		sent += len(recipients)
		d.log.Logger.Info("prompt milestone dispatched",
			zap.Stringer("prompt", p.ID),
			zap.String("kind", string(kind)),
			zap.Int("recipients", len(recipients)))
	}
	return sent, nil
}

// claim takes every due milestone of p that no one has claimed yet and
// returns the latest of them, or "" when there is nothing new.
func (d *PromptDispatcher) claim(ctx context.Context, p prompt.Prompt, now time.Time) (prompt.DispatchKind, error) {
	var latest prompt.DispatchKind
	for _, kind := range prompt.DueDispatches(p, now) {
		ok, err := d.prompts.ClaimDispatch(ctx, p.ID, kind, now)
		if err != nil {
			return "", err
		}
		if ok {
			latest = kind
		}
	}
	return latest, nil
}
