// Package service turns a fetched playlist into stored categories and
// channels and serves the stored listings.
package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voyagen/xtreamvault/internal/logging"
	"github.com/voyagen/xtreamvault/internal/metrics"
	"github.com/voyagen/xtreamvault/internal/store"
)

// DefaultRefreshInterval is the minimum time between full parses.
const DefaultRefreshInterval = 86400 * time.Second

// FetchFunc returns the playlist lines.
type FetchFunc func(ctx context.Context) ([]string, error)

// Options configures a Parser.
type Options struct {
	// RefreshInterval is the throttle window; zero means DefaultRefreshInterval.
	RefreshInterval time.Duration
	// ThrottleOnFailure writes the last-update setting even when the fetch failed,
	// suppressing retries until the window passes.
	ThrottleOnFailure bool
	// Now is the clock; nil means time.Now.
	Now func() time.Time
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
	// Lock guards a refresh; nil uses an in-process mutex.
	Lock Locker
}

// Locker acquires the right to run a refresh. TryLock returns a release
// func, or an error when another refresh holds it.
type Locker interface {
	TryLock(ctx context.Context) (release func(), err error)
}

// Parser materializes a playlist into a Store.
type Parser struct {
	store   store.Store
	fetch   FetchFunc
	opts    Options
	logger  *log.Logger
	metrics *metrics.Metrics
	lock    Locker
}

// New creates a Parser. It does no I/O; call Refresh to run the refresh gate.
func New(s store.Store, fetch FetchFunc, opts Options) *Parser {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	lock := opts.Lock
	if lock == nil {
		lock = &mutexLock{}
	}
	return &Parser{
		store:   s,
		fetch:   fetch,
		opts:    opts,
		logger:  logger.With("component", "service"),
		metrics: opts.Metrics,
		lock:    lock,
	}
}
