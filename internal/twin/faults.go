package twin

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"
)

// Fault is an injected response for one request path.
type Fault struct {
	Path       string  `json:"path"`
	StatusCode int     `json:"status_code"`
	Body       string  `json:"body,omitempty"`
	DelayMS    int     `json:"delay_ms,omitempty"`
	Rate       float64 `json:"rate"` // 0.0-1.0, probability of fault triggering
}

// FaultRegistry manages injected faults keyed by exact request path.
type FaultRegistry struct {
	mu     sync.RWMutex
	faults map[string]Fault
}

func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{faults: make(map[string]Fault)}
}

// Set injects f for f.Path. A zero rate always fires.
func (fr *FaultRegistry) Set(f Fault) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if f.Rate == 0 {
		f.Rate = 1.0
	}
	fr.faults[f.Path] = f
}

// Remove deletes the fault for path and reports whether one existed.
func (fr *FaultRegistry) Remove(path string) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	_, existed := fr.faults[path]
	delete(fr.faults, path)
	return existed
}

// Check returns the fault that fires for path, or nil.
func (fr *FaultRegistry) Check(path string) *Fault {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	if f, ok := fr.faults[path]; ok {
		if f.Rate >= 1.0 || rand.Float64() < f.Rate {
			return &f
		}
	}
	return nil
}

// All returns every registered fault.
func (fr *FaultRegistry) All() []Fault {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	out := make([]Fault, 0, len(fr.faults))
	for _, f := range fr.faults {
		out = append(out, f)
	}
	return out
}

func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults = make(map[string]Fault)
}

// Middleware answers with the registered fault instead of the route.
// Mounted inside the API group so admin endpoints are never affected.
func (fr *FaultRegistry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := fr.Check(r.URL.Path)
		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.DelayMS > 0 {
			select {
			case <-time.After(time.Duration(f.DelayMS) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		if f.StatusCode == 0 {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.StatusCode)
		if f.Body != "" {
			fmt.Fprint(w, f.Body)
		} else {
			fmt.Fprintf(w, `{"error":"injected fault %d"}`, f.StatusCode)
		}
	})
}
