package metrics

import "sync"

var beforeMetricsCalledFns = make([]func(), 0)
var listenersLock = &sync.Mutex{}

// OnBeforeMetricsRequested registers a hook which refreshes gauges right before a scrape.
func OnBeforeMetricsRequested(fn func()) {
	listenersLock.Lock()
	defer listenersLock.Unlock()
	beforeMetricsCalledFns = append(beforeMetricsCalledFns, fn)
}

func runBeforeMetricsRequested() {
	listenersLock.Lock()
	fns := make([]func(), len(beforeMetricsCalledFns))
	copy(fns, beforeMetricsCalledFns)
	listenersLock.Unlock()

	for _, fn := range fns {
		fn()
	}
}
