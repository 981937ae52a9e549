package services

import (
	"context"
	"time"

	"campusmarket/internal/cache"
	"campusmarket/internal/events"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"
	"campusmarket/internal/repos"
)

// Env carries what every service shares. Events, Metrics and Cache may be
// nil; Now defaults to the wall clock.
type Env struct {
	Store   *repos.Store
	Events  events.Publisher
	Metrics *metrics.Metrics
	Cache   *cache.Cache
	Now     func() time.Time
}

func (e *Env) now() time.Time {
	t := time.Now()
	if e.Now != nil {
		t = e.Now()
	}
	return t.UTC().Truncate(time.Second)
}

// publish never fails the caller: the write it reports has already been
// committed.
func (e *Env) publish(ctx context.Context, name, actorID string, data map[string]any) {
	if e.Events == nil {
		return
	}
	ev := events.Event{Name: name, At: e.now(), ActorID: actorID, Data: data}
	if err := e.Events.Publish(ctx, ev); err != nil {
		applog.With("events.publish", map[string]any{"event": name}).WithField("err", err.Error()).Warn("event publish failed")
	}
}

func (e *Env) count(action string, err error) {
	e.Metrics.Action(action, err)
}
