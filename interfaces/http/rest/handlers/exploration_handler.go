package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graphexplorer/application/commands"
	"graphexplorer/application/commands/bus"
	"graphexplorer/application/queries"
	querybus "graphexplorer/application/queries/bus"
	"graphexplorer/pkg/errors"
)

// ExplorationHandler handles exploration HTTP requests
type ExplorationHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewExplorationHandler creates a new exploration handler
func NewExplorationHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *ExplorationHandler {
	return &ExplorationHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// GetSnapshot handles GET /exploration/snapshot
func (h *ExplorationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetSnapshotQuery{})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GetNodeDetails handles GET /exploration/nodes/{nodeID}
func (h *ExplorationHandler) GetNodeDetails(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeDetailsQuery{
		NodeID: chi.URLParam(r, "nodeID"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Load handles POST /exploration/load
func (h *ExplorationHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.LoadGraphCommand{})
}

// EnterEgo handles POST /exploration/ego
func (h *ExplorationHandler) EnterEgo(w http.ResponseWriter, r *http.Request) {
	var cmd commands.EnterEgoCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// ExitEgo handles POST /exploration/ego/exit
func (h *ExplorationHandler) ExitEgo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.ExitEgoCommand{})
}

// SetHopDepth handles PUT /exploration/depth
func (h *ExplorationHandler) SetHopDepth(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SetHopDepthCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// ExpandNode handles POST /exploration/nodes/{nodeID}/expand
func (h *ExplorationHandler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.ExpandNodeCommand{NodeID: chi.URLParam(r, "nodeID")})
}

// HideNode handles POST /exploration/nodes/{nodeID}/hide
func (h *ExplorationHandler) HideNode(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.HideNodeCommand{NodeID: chi.URLParam(r, "nodeID")})
}

// UnhideAll handles POST /exploration/unhide
func (h *ExplorationHandler) UnhideAll(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.UnhideAllCommand{})
}

// SetTypeFilter handles PUT /exploration/filter
func (h *ExplorationHandler) SetTypeFilter(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SetTypeFilterCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// FocusNode handles POST /exploration/focus/node
func (h *ExplorationHandler) FocusNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.FocusNodeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// FocusEdge handles POST /exploration/focus/edge
func (h *ExplorationHandler) FocusEdge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.FocusEdgeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// ClickNode handles POST /interactions/click
func (h *ExplorationHandler) ClickNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ClickNodeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// ClickEdge handles POST /interactions/click-edge
func (h *ExplorationHandler) ClickEdge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ClickEdgeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// Hover handles POST /interactions/hover
func (h *ExplorationHandler) Hover(w http.ResponseWriter, r *http.Request) {
	var cmd commands.HoverCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	h.send(w, r, cmd)
}

// ClearHighlight handles POST /interactions/clear-highlight
func (h *ExplorationHandler) ClearHighlight(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.ClearHighlightCommand{})
}

func (h *ExplorationHandler) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

func (h *ExplorationHandler) send(w http.ResponseWriter, r *http.Request, cmd bus.Command) {
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *ExplorationHandler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (h *ExplorationHandler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsStale(err):
		status = http.StatusConflict
	case errors.IsType(err, errors.ErrorTypeUnavailable):
		status = http.StatusServiceUnavailable
	case errors.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
