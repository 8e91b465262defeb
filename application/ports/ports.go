package ports

import (
	"context"
	"time"

	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/domain/events"
)

// GraphPayload is the result of a graph fetch from the backend service
type GraphPayload struct {
	Nodes []*entities.Node
	Edges []entities.RawEdge
}

// GraphSource is the backend collaborator serving graph data.
// This is a port in hexagonal architecture - the engine doesn't know
// whether the data comes over HTTP, gRPC or a test fixture.
type GraphSource interface {
	// FetchFullGraph retrieves the entire graph
	FetchFullGraph(ctx context.Context) (*GraphPayload, error)

	// FetchEgoGraph retrieves the subgraph within depth hops of the
	// center node. The payload always includes the center node itself.
	FetchEgoGraph(ctx context.Context, centerID valueobjects.NodeID, depth int) (*GraphPayload, error)
}

// LayoutEdge is the endpoint pair handed to the layout engine
type LayoutEdge struct {
	SourceID valueobjects.NodeID
	TargetID valueobjects.NodeID
}

// LayoutRequest describes one layout run over the visible graph
type LayoutRequest struct {
	Generation  uint64
	Nodes       []*entities.Node
	Edges       []LayoutEdge
	NodeSpacing float64
}

// LayoutResult carries the settled positions for a layout run
type LayoutResult struct {
	Generation uint64
	Positions  map[valueobjects.NodeID]valueobjects.Position
}

// LayoutEngine is the pluggable force-layout oracle. Run is asynchronous:
// it returns immediately and invokes settled when the simulation stops.
// The oracle may invoke settled zero or multiple times per run; callers
// must tolerate both.
type LayoutEngine interface {
	Run(req LayoutRequest, settled func(LayoutResult))
}

// EventPublisher forwards domain events to interested consumers
// (the host UI push channel, metrics, logs)
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// Timer is a cancellable pending callback
type Timer interface {
	// Stop cancels the timer; reports whether it was still pending
	Stop() bool
}

// Clock abstracts wall time and timer scheduling so interaction timing
// rules can be tested without real delays
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock is the real Clock backed by the time package
type SystemClock struct{}

// Now returns the current wall time
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc schedules fn after d
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool { return st.t.Stop() }
