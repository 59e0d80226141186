// Package store keeps one live state tree bound to the URL.
//
// A Store owns the current value, debounces writes the way a search box
// needs, and on every flush hands the freshly encoded text to its Navigator
// (the thing that actually rewrites the address bar or the redirect header)
// and to every subscriber.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/value"
)

// HistoryMode determines how a URL update affects browser history.
type HistoryMode int

const (
	// ModePush adds a new history entry.
	ModePush HistoryMode = iota

	// ModeReplace replaces the current entry, so filter churn does not
	// bury the back button.
	ModeReplace
)

// Update is what subscribers and navigators receive on every flush.
type Update struct {
	State value.Value
	Text  string // percent-escaped namespaced encoding of State
	Mode  HistoryMode
}

// Navigator applies a flushed update to the outside world.
type Navigator interface {
	Navigate(Update)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(Update)

func (f NavigatorFunc) Navigate(u Update) { f(u) }

// Option configures a Store.
type Option func(*Store)

// WithMode sets the history mode attached to flushed updates.
func WithMode(m HistoryMode) Option {
	return func(s *Store) { s.mode = m }
}

// WithDebounce delays flushing after Set by d, coalescing rapid writes.
// Zero flushes synchronously.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithNavigator sets the navigator invoked on every flush.
func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.nav = n }
}

// WithHint sets the shape hint used when restoring state from text.
func WithHint(h value.Value) Option {
	return func(s *Store) { s.hint = h }
}

// WithLogger sets the logger; defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store is a subscribable state tree synchronized with the URL. All methods
// are safe for concurrent use.
type Store struct {
	engine *urlstate.Engine
	log    *slog.Logger

	mode     HistoryMode
	debounce time.Duration
	nav      Navigator
	hint     value.Value

	mu      sync.Mutex
	state   value.Value
	timer   *time.Timer
	pending bool
	subs    map[int]func(Update)
	nextSub int
	closed  bool
}

// New creates a Store around an engine. The initial state is the empty
// object.
func New(engine *urlstate.Engine, opts ...Option) *Store {
	s := &Store{
		engine: engine,
		log:    slog.Default(),
		mode:   ModeReplace,
		state:  value.ObjectValue(value.NewObject()),
		subs:   map[int]func(Update){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current state.
func (s *Store) Get() value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set replaces the state and schedules a flush.
func (s *Store) Set(v value.Value) {
	s.mu.Lock()
	s.state = v
	now := s.scheduleLocked()
	state := s.state
	s.mu.Unlock()
	if now {
		s.publish(state)
	}
}

// Update applies fn to the current state and schedules a flush.
func (s *Store) Update(fn func(value.Value) value.Value) {
	s.mu.Lock()
	s.state = fn(s.state)
	now := s.scheduleLocked()
	state := s.state
	s.mu.Unlock()
	if now {
		s.publish(state)
	}
}

// Subscribe registers fn for every flush. The returned function cancels the
// subscription.
func (s *Store) Subscribe(fn func(Update)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Restore replaces the state from encoded namespaced text without notifying
// the navigator; restoring is the URL acting on us, not us on the URL.
func (s *Store) Restore(text string) error {
	v, err := s.engine.Parse(text, s.currentHint())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cancelTimerLocked()
	s.state = v
	s.mu.Unlock()
	return nil
}

// RestoreQuery replaces the state from a raw query string, standalone
// layout.
func (s *Store) RestoreQuery(query string) {
	v := s.engine.ParseQuery(query, s.currentHint())
	s.mu.Lock()
	s.cancelTimerLocked()
	s.state = v
	s.mu.Unlock()
}

// Hint returns the shape hint used when restoring state from text, so
// collaborators feeding text into the store can type scalars the same way.
func (s *Store) Hint() value.Value {
	return s.currentHint()
}

// Flush forces any pending debounced update out immediately.
func (s *Store) Flush() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.cancelTimerLocked()
	s.mu.Unlock()
	s.flush()
}

// Close cancels any pending flush. The store remains readable.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelTimerLocked()
	s.mu.Unlock()
}

func (s *Store) currentHint() value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hint
}

// scheduleLocked arms the debounce timer, or reports that the caller should
// publish synchronously when no debounce is configured. Caller holds s.mu.
func (s *Store) scheduleLocked() (flushNow bool) {
	if s.closed {
		return false
	}
	if s.debounce <= 0 {
		return true
	}
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
	return false
}

func (s *Store) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

func (s *Store) flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	state := s.state
	s.mu.Unlock()
	s.publish(state)
}

func (s *Store) publish(state value.Value) {
	text, err := s.engine.Stringify(state)
	if err != nil {
		// Fields-only codec: standalone consumers still get the state.
		s.log.Warn("store: namespaced encoding unavailable", "err", err)
	}
	u := Update{State: state, Text: text, Mode: s.mode}
	if s.nav != nil {
		s.nav.Navigate(u)
	}
	s.mu.Lock()
	subs := make([]func(Update), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(u)
	}
}
