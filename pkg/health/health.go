// Package health runs reachability checks against the chat client's backends.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// Check represents a single dependency check that can succeed or fail.
type Check interface {
	// Name returns the human-readable name of this check
	Name() string

	// Check returns nil if the dependency is reachable
	Check(ctx context.Context) error
}

// CheckFunc is a function adapter that allows simple functions to be used as checks.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheckFunc creates a new CheckFunc with the given name and function.
func NewCheckFunc(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{
		name: name,
		fn:   fn,
	}
}

// Name returns the name of this check.
func (c *CheckFunc) Name() string {
	return c.name
}

// Check executes the check function.
func (c *CheckFunc) Check(ctx context.Context) error {
	return c.fn(ctx)
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// Report is the outcome of one run over all checks, ordered by check name.
type Report struct {
	Healthy bool
	Checks  []CheckResult
}

// Checker runs a fixed set of checks concurrently.
type Checker struct {
	checks  []Check
	timeout time.Duration
	logger  logger.Logger
	mu      sync.RWMutex
}

// Option is a functional option for configuring Checker.
type Option func(*Checker)

// WithTimeout sets the timeout for individual checks.
// Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(h *Checker) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the logger for check results.
func WithLogger(l logger.Logger) Option {
	return func(h *Checker) {
		h.logger = l
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	h := &Checker{
		timeout: 5 * time.Second,
		logger:  logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Add registers a check.
func (h *Checker) Add(check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check)
}

// Run executes every check and returns an error naming the failed ones.
func (h *Checker) Run(ctx context.Context) (*Report, error) {
	h.mu.RLock()
	checks := make([]Check, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, chk Check) {
			defer wg.Done()
			results[idx] = h.runCheck(ctx, chk)
		}(i, check)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	report := &Report{Healthy: true, Checks: results}
	var failed []string
	for _, r := range results {
		if !r.Healthy {
			report.Healthy = false
			failed = append(failed, r.Name)
		}
	}
	if !report.Healthy {
		return report, fmt.Errorf("checks failed: %v", failed)
	}
	return report, nil
}

func (h *Checker) runCheck(parentCtx context.Context, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(parentCtx, h.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	latency := time.Since(start)

	result := CheckResult{Name: check.Name(), Healthy: err == nil, Latency: latency}
	if err != nil {
		result.Error = err.Error()
		h.logger.Warn("Check failed",
			logger.StringField("check", check.Name()),
			logger.ErrorField(err),
			logger.DurationField("latency", latency))
		return result
	}

	h.logger.Debug("Check passed",
		logger.StringField("check", check.Name()),
		logger.DurationField("latency", latency))
	return result
}
