// Package session owns the live state of one prayer clock: the location,
// the calculation method, the current table and the countdown towards the
// next event.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/countdown"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/metrics"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// State is the presentation state of the session.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateReady   State = "ready"
)

// DefaultMethod is Umm Al-Qura.
const DefaultMethod = 4

// DefaultCacheTTL is how long fetched day timings are reused.
const DefaultCacheTTL = 6 * time.Hour

// ErrSuperseded is returned by Refresh when a newer request started while
// it was in flight. Its result was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Reasons passed to the reselect metric.
const (
	reasonRefresh = "refresh"
	reasonExpired = "expired"
)

// LocationResolver produces coordinates for the session.
type LocationResolver interface {
	Resolve(ctx context.Context) (*geo.Location, error)
}

// Options configures a Session.
type Options struct {
	Source   TimingsSource
	Resolver LocationResolver
	Clock    clock.Clock
	Method   int
	Location *geo.Location
	CacheTTL time.Duration
	// OnUpdate is called with a fresh snapshot after every state change and
	// every countdown tick. It must not call back into the session
	// synchronously.
	OnUpdate func(Snapshot)
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	State     State             `json:"state"`
	Version   uint64            `json:"version"`
	Method    int               `json:"method"`
	Location  *geo.Location     `json:"location,omitempty"`
	Table     *prayer.Table     `json:"table,omitempty"`
	Hijri     *api.HijriDate    `json:"hijri,omitempty"`
	Next      *prayer.NextEvent `json:"next,omitempty"`
	Countdown *countdown.Tick   `json:"countdown,omitempty"`
	Error     string            `json:"error,omitempty"`
	Err       error             `json:"-"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Session is safe for concurrent use.
type Session struct {
	id       string
	clock    clock.Clock
	fetch    *fetcher
	resolver LocationResolver
	onUpdate func(Snapshot)
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	token        uint64
	version      uint64
	state        State
	err          error
	method       int
	location     *geo.Location
	table        *prayer.Table
	tomorrowFajr string
	hijri        *api.HijriDate
	next         *prayer.NextEvent
	tick         *countdown.Tick
	cd           *countdown.Countdown
	// renewed is the table version for which an automatic refresh has
	// already been requested.
	renewed   uint64
	updatedAt time.Time
}

// New creates an idle session.
func New(opts Options) *Session {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:       id,
		clock:    clk,
		fetch:    newFetcher(opts.Source, ttl),
		resolver: opts.Resolver,
		onUpdate: opts.OnUpdate,
		logger:   log.With().Str("session", id).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
		method:   opts.Method,
		location: opts.Location,
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Close stops the countdown and cancels background refreshes.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cd != nil {
		s.cd.Stop()
		s.cd = nil
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		State:     s.state,
		Version:   s.version,
		Method:    s.method,
		Err:       s.err,
		UpdatedAt: s.updatedAt,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	if s.location != nil {
		loc := *s.location
		snap.Location = &loc
	}
	if s.table != nil {
		tbl := *s.table
		snap.Table = &tbl
	}
	if s.hijri != nil {
		h := *s.hijri
		snap.Hijri = &h
	}
	if s.next != nil {
		next := *s.next
		snap.Next = &next
	}
	if s.tick != nil {
		tick := *s.tick
		snap.Countdown = &tick
	}
	return snap
}

func (s *Session) notify() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.Snapshot())
}

// SetMethod rebuilds the table with another calculation method. The method
// becomes part of the session only once its table is installed.
func (s *Session) SetMethod(ctx context.Context, method int) error {
	return s.refresh(ctx, &method)
}

// SetLocation replaces the location and rebuilds the table.
func (s *Session) SetLocation(ctx context.Context, loc *geo.Location) error {
	if loc == nil {
		return geo.ErrLocationUnavailable
	}
	s.mu.Lock()
	l := *loc
	s.location = &l
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// ResolveLocation runs the location resolver and, on success, rebuilds the
// table for the new coordinates. When resolution fails the session enters
// the error state and nothing is fetched.
func (s *Session) ResolveLocation(ctx context.Context) error {
	s.mu.Lock()
	s.token++
	token := s.token
	s.state = StateLoading
	s.updatedAt = s.clock.Now()
	s.mu.Unlock()
	s.notify()

	loc, err := s.resolve(ctx)

	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		s.setErrorLocked(err)
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("source", loc.Source).
		Str("city", loc.City).
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Msg("[session] location resolved")
	return s.SetLocation(ctx, loc)
}

func (s *Session) resolve(ctx context.Context) (*geo.Location, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no location source configured", geo.ErrLocationUnavailable)
	}
	return s.resolver.Resolve(ctx)
}

// ForceRefresh drops cached timings and refreshes.
func (s *Session) ForceRefresh(ctx context.Context) error {
	s.fetch.flush()
	return s.Refresh(ctx)
}

// Refresh fetches today's and tomorrow's timings and installs a new table.
// Only the most recently started refresh may change the visible state; an
// older one returns ErrSuperseded. On failure the previous table stays in
// place and the session enters the error state.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx, nil)
}

func (s *Session) refresh(ctx context.Context, withMethod *int) error {
	s.mu.Lock()
	s.token++
	token := s.token
	loc := s.location
	method := s.method
	if withMethod != nil {
		method = *withMethod
	}
	now := s.clock.Now()
	if loc == nil {
		s.setErrorLocked(fmt.Errorf("%w: no coordinates to fetch timings for", geo.ErrLocationUnavailable))
		err := s.err
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.state = StateLoading
	s.updatedAt = now
	s.mu.Unlock()
	s.notify()

	table, tomorrowFajr, hijri, err := s.build(ctx, now, loc, method)

	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		metrics.ObserveStale()
		s.logger.Debug().Uint64("token", token).Msg("[session] discarded superseded refresh")
		return ErrSuperseded
	}
	if err != nil {
		s.setErrorLocked(err)
		s.mu.Unlock()
		metrics.ObserveRefresh(metrics.ResultError)
		s.logger.Error().Err(err).Int("method", method).Msg("[session] refresh failed")
		s.notify()
		return err
	}

	s.method = method
	s.installLocked(table, tomorrowFajr, hijri)
	version := s.version
	s.mu.Unlock()

	metrics.ObserveRefresh(metrics.ResultOK)
	s.logger.Debug().Uint64("version", version).Int("method", method).Msg("[session] table refreshed")
	s.notify()
	return nil
}

// build produces a complete table or an error, never a partial table.
// Before the day's fajr the night that began at the previous maghrib is
// still running, so the table is built for the previous day.
func (s *Session) build(ctx context.Context, now time.Time, loc *geo.Location, method int) (prayer.Table, string, api.HijriDate, error) {
	day := prayer.DayStart(now)
	pair, err := s.fetch.fetchPair(ctx, day, loc.Latitude, loc.Longitude, method)
	if err != nil {
		return prayer.Table{}, "", api.HijriDate{}, err
	}

	if fajr, err := prayer.ParseTimeOfDay(pair.today.Data.Timings.Fajr, day); err == nil && now.Before(fajr) {
		day = day.AddDate(0, 0, -1)
		pair, err = s.fetch.fetchPair(ctx, day, loc.Latitude, loc.Longitude, method)
		if err != nil {
			return prayer.Table{}, "", api.HijriDate{}, err
		}
	}

	tomorrowFajr := pair.tomorrow.Data.Timings.Fajr
	table, err := prayer.NewTable(pair.today.Data.Timings, tomorrowFajr, day)
	if err != nil {
		return prayer.Table{}, "", api.HijriDate{}, err
	}
	return table, tomorrowFajr, pair.today.Data.Date.Hijri, nil
}

func (s *Session) setErrorLocked(err error) {
	s.state = StateError
	s.err = err
	s.updatedAt = s.clock.Now()
}

// installLocked replaces the table, bumps the version and restarts the
// countdown for it.
func (s *Session) installLocked(table prayer.Table, tomorrowFajr string, hijri api.HijriDate) {
	s.version++
	s.table = &table
	s.tomorrowFajr = tomorrowFajr
	s.hijri = &hijri
	s.state = StateReady
	s.err = nil
	s.reselectLocked(reasonRefresh)
}

// reselectLocked picks the next event for the live table and starts exactly
// one countdown towards it, stopping any previous one.
func (s *Session) reselectLocked(reason string) {
	if s.cd != nil {
		s.cd.Stop()
		s.cd = nil
	}

	now := s.clock.Now()
	s.updatedAt = now
	metrics.ObserveReselect(reason)

	next, err := prayer.SelectNext(*s.table, s.tomorrowFajr, now)
	if err != nil {
		// The table was validated when it was built.
		s.setErrorLocked(err)
		s.next = nil
		s.tick = nil
		return
	}
	s.next = &next

	tick := countdown.Evaluate(next.Time, now)
	s.tick = &tick

	if next.Fallback {
		if s.table.Date.Before(prayer.DayStart(now)) {
			s.logger.Info().Time("table_date", s.table.Date).Msg("[session] night ended, rolling over")
			s.renewLocked("rollover")
			return
		}
		s.logger.Warn().
			Time("table_date", s.table.Date).
			Time("now", now).
			Msg("[session] no upcoming event in table, showing earliest until refresh")
		s.renewLocked("fallback")
		return
	}
	if tick.Stale {
		s.renewLocked("stale")
	}
	if s.ctx.Err() != nil {
		return
	}

	version := s.version
	s.cd = countdown.New(s.clock, next.Time,
		func(t countdown.Tick) { s.onTick(version, t) },
		func(t countdown.Tick) { s.onExpire(version) },
	)
	s.cd.Start()
}

// renewLocked requests one background refresh per table version.
func (s *Session) renewLocked(why string) {
	if s.renewed == s.version {
		return
	}
	s.renewed = s.version
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Info().Str("reason", why).Uint64("version", s.version).Msg("[session] scheduling refresh")
	go func() {
		if err := s.Refresh(s.ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			s.logger.Warn().Err(err).Str("reason", why).Msg("[session] background refresh failed")
		}
	}()
}

func (s *Session) onTick(version uint64, t countdown.Tick) {
	s.mu.Lock()
	if version != s.version {
		s.mu.Unlock()
		return
	}
	s.tick = &t
	if t.Stale {
		s.renewLocked("stale")
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) onExpire(version uint64) {
	s.mu.Lock()
	if version != s.version || s.table == nil {
		s.mu.Unlock()
		return
	}
	s.reselectLocked(reasonExpired)
	s.mu.Unlock()
	s.notify()
}
