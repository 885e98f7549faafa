package api

import (
	"sync"

	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
)

// PlanCache holds the most recent computed plan per trip, keyed by the
// trip version it was built from. A version bump (settings edit, stop
// override) naturally invalidates the entry.
type PlanCache struct {
	mu sync.Mutex
	m  map[string]cachedPlan
}

type cachedPlan struct {
	version int
	plan    model.PlanResult
}

// NewPlanCache constructs a PlanCache.
func NewPlanCache() *PlanCache { return &PlanCache{m: map[string]cachedPlan{}} }

// Get returns the cached plan for the trip at exactly this version.
func (c *PlanCache) Get(tripID string, version int) (model.PlanResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[tripID]
	if !ok || e.version != version {
		metrics.PlanCacheHits.WithLabelValues("miss").Inc()
		return model.PlanResult{}, false
	}
	metrics.PlanCacheHits.WithLabelValues("hit").Inc()
	return e.plan, true
}

// Put stores the plan computed for the trip at this version.
func (c *PlanCache) Put(tripID string, version int, plan model.PlanResult) {
	if tripID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[tripID] = cachedPlan{version: version, plan: plan}
}

// Drop removes the trip's entry, e.g. after deletion.
func (c *PlanCache) Drop(tripID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, tripID)
}
