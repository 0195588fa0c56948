package api

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// RouteMetrics aggregates timings for one route template
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

type requestSample struct {
	method   string
	path     string
	status   int
	duration time.Duration
	at       time.Time
}

// MetricsCollector collects request metrics off the request path. Samples go
// through a buffered channel and are dropped when it is full; a request is
// never slowed down to record a metric.
type MetricsCollector struct {
	mu      sync.RWMutex
	routes  map[string]*RouteMetrics
	samples chan requestSample
	stop    chan struct{}
	once    sync.Once
}

// NewMetricsCollector starts the background aggregator
func NewMetricsCollector(buffer int) *MetricsCollector {
	mc := &MetricsCollector{
		routes:  make(map[string]*RouteMetrics),
		samples: make(chan requestSample, buffer),
		stop:    make(chan struct{}),
	}
	go mc.process()
	return mc
}

// Stop ends the aggregator goroutine
func (mc *MetricsCollector) Stop() {
	mc.once.Do(func() { close(mc.stop) })
}

func (mc *MetricsCollector) record(s requestSample) {
	select {
	case mc.samples <- s:
	default:
	}
}

func (mc *MetricsCollector) process() {
	for {
		select {
		case s := <-mc.samples:
			mc.add(s)
		case <-mc.stop:
			return
		}
	}
}

func (mc *MetricsCollector) add(s requestSample) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	key := s.method + " " + s.path
	rm, ok := mc.routes[key]
	if !ok {
		rm = &RouteMetrics{Method: s.method, Path: s.path}
		mc.routes[key] = rm
	}
	rm.Count++
	if s.status >= http.StatusBadRequest {
		rm.ErrorCount++
	}
	rm.TotalTime += s.duration
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	if s.duration > rm.MaxTime {
		rm.MaxTime = s.duration
	}
	rm.LastRequest = s.at
}

// Routes returns a snapshot sorted by average time, slowest first
func (mc *MetricsCollector) Routes() []RouteMetrics {
	mc.mu.RLock()
	out := make([]RouteMetrics, 0, len(mc.routes))
	for _, rm := range mc.routes {
		out = append(out, *rm)
	}
	mc.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].AvgTime > out[j].AvgTime })
	return out
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records one sample per request, keyed by the mux route template
// so ids in the path do not explode the route table
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		mc.record(requestSample{
			method:   r.Method,
			path:     path,
			status:   sw.status,
			duration: time.Since(start),
			at:       start,
		})
	})
}
