// Package trace is the instrumentation layer: pipeline phases emit events
// to a handler, and a console formatter renders them when verbose output is
// wanted. The default handler is nil, which keeps the pipeline silent.
package trace

import "time"

// EventName identifies a pipeline phase event.
type EventName string

const (
	DomainLoaded     EventName = "domain.loaded"
	DomainWarning    EventName = "domain.warning"
	DFAParsed        EventName = "dfa.parsed"
	RefineCompleted  EventName = "dfa.refined"
	RefineWarning    EventName = "dfa.refine.warning"
	TransitionBegin  EventName = "transition.begin"
	LabelSkipped     EventName = "transition.label.skipped"
	CacheHit         EventName = "cache.hit"
	CacheMiss        EventName = "cache.miss"
	SearchCompleted  EventName = "search.completed"
	SectionEmitted   EventName = "emit.section"
	LibraryAssembled EventName = "emit.library"
)

// Event is one instrumentation record.
type Event struct {
	Name    EventName
	Data    map[string]interface{}
	Latency time.Duration
}

// Handler processes events as they occur.
type Handler func(Event)

// Emit dispatches an event, tolerating a nil handler.
func (h Handler) Emit(name EventName, data map[string]interface{}) {
	if h == nil {
		return
	}
	h(Event{Name: name, Data: data})
}

// EmitTimed dispatches an event carrying the elapsed time since start.
func (h Handler) EmitTimed(name EventName, start time.Time, data map[string]interface{}) {
	if h == nil {
		return
	}
	h(Event{Name: name, Data: data, Latency: time.Since(start)})
}
