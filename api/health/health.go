// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package health runs registered readiness checks and serves their results.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// AllTag is implicitly carried by every check
	AllTag = "all"
	// ApplicationTag marks checks of the process rather than a component
	ApplicationTag = "application"
)

var errDuplicateCheck = errors.New("duplicated check")

// Checker reports the health of a component. A non-nil error marks it
// unhealthy.
type Checker interface {
	HealthCheck(context.Context) (any, error)
}

type CheckerFunc func(context.Context) (any, error)

func (f CheckerFunc) HealthCheck(ctx context.Context) (any, error) {
	return f(ctx)
}

// Result is the outcome of one check.
type Result struct {
	Details   any           `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Reply is served by the health endpoint.
type Reply struct {
	Checks  map[string]Result `json:"checks"`
	Healthy bool              `json:"healthy"`
}

type check struct {
	checker Checker
	tags    []string
}

type Health struct {
	log     log.Logger
	metrics *healthMetrics

	lock   sync.RWMutex
	checks map[string]check
}

func New(log log.Logger, registerer prometheus.Registerer) (*Health, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Health{
		log:     log,
		metrics: m,
		checks:  make(map[string]check),
	}, nil
}

// Register adds checker under name. Tags select the check in Check.
func (h *Health) Register(name string, checker Checker, tags ...string) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.checks[name]; ok {
		return fmt.Errorf("%w: %q", errDuplicateCheck, name)
	}
	h.checks[name] = check{
		checker: checker,
		tags:    append([]string{AllTag}, tags...),
	}
	return nil
}

// Check runs every check carrying one of tags, or every check when tags is
// empty.
func (h *Health) Check(ctx context.Context, tags ...string) (map[string]Result, bool) {
	if len(tags) == 0 {
		tags = []string{AllTag}
	}

	h.lock.RLock()
	defer h.lock.RUnlock()

	var (
		results = make(map[string]Result)
		failing = make(map[string]int)
		healthy = true
	)
	for name, c := range h.checks {
		if !slices.ContainsFunc(tags, func(tag string) bool {
			return slices.Contains(c.tags, tag)
		}) {
			continue
		}

		start := time.Now()
		details, err := c.checker.HealthCheck(ctx)
		result := Result{
			Details:   details,
			Timestamp: start,
			Duration:  time.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
			healthy = false
			for _, tag := range c.tags {
				failing[tag]++
			}
			h.log.Warn("check failed",
				log.String("name", name),
				log.Err(err),
			)
		}
		results[name] = result
	}
	for _, tag := range tags {
		h.metrics.failingChecks.WithLabelValues(tag).Set(float64(failing[tag]))
	}
	return results, healthy
}

// ServeHTTP reports every check. The status is 503 when one fails. The tag
// query parameter narrows the checks.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.Check(r.Context(), r.URL.Query()["tag"]...)

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	err := json.NewEncoder(w).Encode(Reply{
		Checks:  checks,
		Healthy: healthy,
	})
	if err != nil {
		h.log.Debug("failed to encode health reply",
			log.Err(err),
		)
	}
}
