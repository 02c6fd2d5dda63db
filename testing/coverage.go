package e2etesting

import (
	"sort"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

type RouteInfo struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	HitCount int    `json:"hit_count,omitempty"`
}

type CoverageStats struct {
	TotalRoutes   int
	CoveredRoutes int
	MissingRoutes []RouteInfo
	Coverage      float64
}

// CoverageTracker records which registered routes a test run exercised.
type CoverageTracker struct {
	mu               sync.RWMutex
	registeredRoutes map[string]RouteInfo
	hitRoutes        map[string]int
	excludePaths     map[string]bool
}

func NewCoverageTracker() *CoverageTracker {
	return &CoverageTracker{
		registeredRoutes: make(map[string]RouteInfo),
		hitRoutes:        make(map[string]int),
		excludePaths: map[string]bool{
			"/healthz":      true,
			"/openapi.json": true,
			"/openapi.yaml": true,
		},
	}
}

func routeKey(method, path string) string {
	return method + ":" + path
}

func (ct *CoverageTracker) RegisterRoutes(e *echo.Echo) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	for _, route := range e.Routes() {
		if ct.excludePaths[route.Path] {
			continue
		}
		ct.registeredRoutes[routeKey(route.Method, route.Path)] = RouteInfo{
			Method: route.Method,
			Path:   route.Path,
		}
	}
}

func (ct *CoverageTracker) TrackingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ct.RecordHit(c.Request().Method, c.Path())
			return next(c)
		}
	}
}

func (ct *CoverageTracker) RecordHit(method, path string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.hitRoutes[routeKey(method, path)]++
}

func (ct *CoverageTracker) GetHitCount(method, path string) int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.hitRoutes[routeKey(method, path)]
}

func (ct *CoverageTracker) GetStats() CoverageStats {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	var missing []RouteInfo
	covered := 0
	for key, route := range ct.registeredRoutes {
		if ct.hitRoutes[key] > 0 {
			covered++
		} else {
			missing = append(missing, route)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Path == missing[j].Path {
			return missing[i].Method < missing[j].Method
		}
		return missing[i].Path < missing[j].Path
	})

	total := len(ct.registeredRoutes)
	var coverage float64
	if total > 0 {
		coverage = float64(covered) / float64(total) * 100
	}

	return CoverageStats{
		TotalRoutes:   total,
		CoveredRoutes: covered,
		MissingRoutes: missing,
		Coverage:      coverage,
	}
}

func (ct *CoverageTracker) AssertMinimumCoverage(t *testing.T, minimum float64) {
	t.Helper()
	stats := ct.GetStats()
	if stats.Coverage < minimum {
		t.Errorf("route coverage %.1f%% is below %.1f%%; missing: %v", stats.Coverage, minimum, stats.MissingRoutes)
	}
}
