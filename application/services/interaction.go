package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/valueobjects"
)

// Default timing rules for pointer disambiguation
const (
	// DefaultDoubleClickWindow is the maximum gap between two clicks on
	// the same node for them to count as a double-click
	DefaultDoubleClickWindow = 400 * time.Millisecond
	// DefaultSingleClickDelay is how long a single click is held back
	// waiting for a possible second click
	DefaultSingleClickDelay = 250 * time.Millisecond
	// DefaultHoverHideDelay is how long hover details stay up after the
	// pointer leaves, so the pointer can travel into the detail panel
	DefaultHoverHideDelay = 250 * time.Millisecond
)

// InteractionTiming overrides the disambiguation delays; zero fields fall
// back to the defaults.
type InteractionTiming struct {
	DoubleClickWindow time.Duration
	SingleClickDelay  time.Duration
	HoverHideDelay    time.Duration
}

func (t InteractionTiming) withDefaults() InteractionTiming {
	if t.DoubleClickWindow <= 0 {
		t.DoubleClickWindow = DefaultDoubleClickWindow
	}
	if t.SingleClickDelay <= 0 {
		t.SingleClickDelay = DefaultSingleClickDelay
	}
	if t.HoverHideDelay <= 0 {
		t.HoverHideDelay = DefaultHoverHideDelay
	}
	return t
}

// InteractionHandlers are the resolved-gesture callbacks. They are always
// invoked without any disambiguator lock held, so they may freely call
// back into the engine.
type InteractionHandlers struct {
	SingleClick func(id valueobjects.NodeID)
	DoubleClick func(id valueobjects.NodeID)
	HoverShow   func(id valueobjects.NodeID)
	HoverHide   func(id valueobjects.NodeID)
}

// Disambiguator turns raw pointer events into single-click, double-click
// and hover gestures. A click on a node is held for the single-click
// delay; a second click on the same node inside the double-click window
// resolves as a double-click, cancelling the held single if it has not
// fired yet (past the grace delay the single has already fired and the
// double simply follows it). Hover
// hide is delayed so the pointer can move from the node into whatever the
// hover opened without it vanishing.
type Disambiguator struct {
	mu       sync.Mutex
	clock    ports.Clock
	timing   InteractionTiming
	handlers InteractionHandlers
	logger   *zap.Logger

	lastClickID valueobjects.NodeID
	lastClickAt time.Time

	clickSeq     uint64
	pendingClick ports.Timer
	pendingID    valueobjects.NodeID

	hideSeq     uint64
	pendingHide ports.Timer
	hoverID     valueobjects.NodeID
}

// NewDisambiguator creates a disambiguator with the given clock, timing
// and gesture handlers. Nil handlers are treated as no-ops.
func NewDisambiguator(clock ports.Clock, timing InteractionTiming, handlers InteractionHandlers, logger *zap.Logger) *Disambiguator {
	return &Disambiguator{
		clock:    clock,
		timing:   timing.withDefaults(),
		handlers: handlers,
		logger:   logger,
	}
}

// SetTiming replaces the disambiguation delays. Pending gestures keep
// the delays they were scheduled with.
func (d *Disambiguator) SetTiming(timing InteractionTiming) {
	d.mu.Lock()
	d.timing = timing.withDefaults()
	d.mu.Unlock()
}

// Click feeds one raw click on a node. The gesture it belongs to is not
// known yet, so resolution happens either here (double) or on the held
// timer (single).
func (d *Disambiguator) Click(id valueobjects.NodeID) {
	if id.IsZero() {
		return
	}

	d.mu.Lock()
	now := d.clock.Now()

	if d.lastClickID.Equals(id) && now.Sub(d.lastClickAt) <= d.timing.DoubleClickWindow {
		if d.pendingClick != nil {
			d.pendingClick.Stop()
			d.pendingClick = nil
		}
		d.clickSeq++
		d.lastClickID = valueobjects.NodeID{}
		d.mu.Unlock()

		d.logger.Debug("Resolved double-click", zap.String("nodeID", id.String()))
		if d.handlers.DoubleClick != nil {
			d.handlers.DoubleClick(id)
		}
		return
	}

	// A held click on a different node is superseded; release it now
	// rather than dropping it.
	var flush valueobjects.NodeID
	if d.pendingClick != nil {
		d.pendingClick.Stop()
		flush = d.pendingID
	}

	d.clickSeq++
	seq := d.clickSeq
	d.lastClickID = id
	d.lastClickAt = now
	d.pendingID = id
	d.pendingClick = d.clock.AfterFunc(d.timing.SingleClickDelay, func() {
		d.resolveSingle(seq)
	})
	d.mu.Unlock()

	if !flush.IsZero() && d.handlers.SingleClick != nil {
		d.handlers.SingleClick(flush)
	}
}

func (d *Disambiguator) resolveSingle(seq uint64) {
	d.mu.Lock()
	if seq != d.clickSeq || d.pendingClick == nil {
		d.mu.Unlock()
		return
	}
	id := d.pendingID
	d.pendingClick = nil
	d.mu.Unlock()

	d.logger.Debug("Resolved single-click", zap.String("nodeID", id.String()))
	if d.handlers.SingleClick != nil {
		d.handlers.SingleClick(id)
	}
}

// HoverEnter feeds a pointer-over on a node. Entering cancels any pending
// hide and shows the hover target immediately.
func (d *Disambiguator) HoverEnter(id valueobjects.NodeID) {
	if id.IsZero() {
		return
	}

	d.mu.Lock()
	d.hideSeq++
	if d.pendingHide != nil {
		d.pendingHide.Stop()
		d.pendingHide = nil
	}
	same := d.hoverID.Equals(id)
	d.hoverID = id
	d.mu.Unlock()

	if !same && d.handlers.HoverShow != nil {
		d.handlers.HoverShow(id)
	}
}

// HoverLeave feeds a pointer-out. The hide is delayed; re-entering the
// node (or calling KeepHoverOpen from the opened detail) cancels it.
func (d *Disambiguator) HoverLeave() {
	d.mu.Lock()
	if d.hoverID.IsZero() {
		d.mu.Unlock()
		return
	}
	d.hideSeq++
	seq := d.hideSeq
	if d.pendingHide != nil {
		d.pendingHide.Stop()
	}
	d.pendingHide = d.clock.AfterFunc(d.timing.HoverHideDelay, func() {
		d.resolveHide(seq)
	})
	d.mu.Unlock()
}

// KeepHoverOpen cancels a pending hover hide without changing the hover
// target. Called when the pointer moves into the hover detail itself.
func (d *Disambiguator) KeepHoverOpen() {
	d.mu.Lock()
	d.hideSeq++
	if d.pendingHide != nil {
		d.pendingHide.Stop()
		d.pendingHide = nil
	}
	d.mu.Unlock()
}

func (d *Disambiguator) resolveHide(seq uint64) {
	d.mu.Lock()
	if seq != d.hideSeq || d.pendingHide == nil {
		d.mu.Unlock()
		return
	}
	id := d.hoverID
	d.pendingHide = nil
	d.hoverID = valueobjects.NodeID{}
	d.mu.Unlock()

	if d.handlers.HoverHide != nil {
		d.handlers.HoverHide(id)
	}
}

// Reset drops all pending gestures without firing them. Used when the
// graph underneath the pointer is replaced wholesale.
func (d *Disambiguator) Reset() {
	d.mu.Lock()
	d.clickSeq++
	d.hideSeq++
	if d.pendingClick != nil {
		d.pendingClick.Stop()
		d.pendingClick = nil
	}
	if d.pendingHide != nil {
		d.pendingHide.Stop()
		d.pendingHide = nil
	}
	d.lastClickID = valueobjects.NodeID{}
	d.hoverID = valueobjects.NodeID{}
	d.mu.Unlock()
}
