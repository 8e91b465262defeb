package graphapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/pkg/errors"
)

// nodeDTO is the wire shape of one node from the graph service
type nodeDTO struct {
	ID                string `json:"id" validate:"required"`
	Type              string `json:"type" validate:"required"`
	Label             string `json:"label"`
	RelationshipCount int    `json:"relationship_count" validate:"min=0"`
}

// edgeDTO is the wire shape of one directed relationship
type edgeDTO struct {
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Relation string `json:"relation" validate:"required"`
}

type graphResponse struct {
	Nodes []nodeDTO `json:"nodes"`
	Edges []edgeDTO `json:"edges"`
}

// ClientConfig configures the graph service client
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	BreakerTimeout time.Duration
	MaxRetries     int
}

// Client fetches graph data from the backing graph service over HTTP.
// It implements ports.GraphSource. Failures trip a circuit breaker so a
// down backend fails fast instead of stacking timeouts.
type Client struct {
	cfg      ClientConfig
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	validate *validator.Validate
	logger   *zap.Logger
}

var _ ports.GraphSource = (*Client)(nil)

// NewClient creates a graph service client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "graph-service",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		breaker:  breaker,
		validate: validator.New(),
		logger:   logger,
	}
}

// FetchFullGraph retrieves the entire graph
func (c *Client) FetchFullGraph(ctx context.Context) (*ports.GraphPayload, error) {
	return c.fetch(ctx, c.cfg.BaseURL+"/api/graph")
}

// FetchEgoGraph retrieves the neighborhood within depth hops of the
// center node
func (c *Client) FetchEgoGraph(ctx context.Context, centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
	endpoint := fmt.Sprintf("%s/api/graph/ego/%s?depth=%d",
		c.cfg.BaseURL, url.PathEscape(centerID.String()), depth)
	return c.fetch(ctx, endpoint)
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*ports.GraphPayload, error) {
	var lastErr error
	attempts := c.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.NewTimeoutError("graph fetch")
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, endpoint)
		})
		if err == nil {
			return result.(*ports.GraphPayload), nil
		}
		lastErr = err

		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errors.NewUnavailableError("graph service")
		}
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError("graph fetch")
		}
		c.logger.Warn("Graph fetch attempt failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, errors.NewNetworkError("graph fetch failed", lastErr)
}

func (c *Client) doFetch(ctx context.Context, endpoint string) (*ports.GraphPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graph service returned %d: %s", resp.StatusCode, string(body))
	}

	var wire graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding graph response: %w", err)
	}
	return c.mapPayload(wire), nil
}

// mapPayload converts wire DTOs into domain objects. Entries that fail
// validation are skipped with a warning rather than failing the whole
// fetch; a partially usable payload beats none.
func (c *Client) mapPayload(wire graphResponse) *ports.GraphPayload {
	payload := &ports.GraphPayload{
		Nodes: make([]*entities.Node, 0, len(wire.Nodes)),
		Edges: make([]entities.RawEdge, 0, len(wire.Edges)),
	}

	for _, dto := range wire.Nodes {
		if err := c.validate.Struct(dto); err != nil {
			c.logger.Warn("Skipping invalid node", zap.String("id", dto.ID), zap.Error(err))
			continue
		}
		id, err := valueobjects.NewNodeID(dto.ID)
		if err != nil {
			c.logger.Warn("Skipping node with bad ID", zap.Error(err))
			continue
		}
		label := dto.Label
		if label == "" {
			label = dto.ID
		}
		node, err := entities.NewNode(id, entities.NodeType(dto.Type), label, dto.RelationshipCount)
		if err != nil {
			c.logger.Warn("Skipping node", zap.String("id", dto.ID), zap.Error(err))
			continue
		}
		payload.Nodes = append(payload.Nodes, node)
	}

	for _, dto := range wire.Edges {
		if err := c.validate.Struct(dto); err != nil {
			c.logger.Warn("Skipping invalid edge", zap.Error(err))
			continue
		}
		source, err := valueobjects.NewNodeID(dto.Source)
		if err != nil {
			continue
		}
		target, err := valueobjects.NewNodeID(dto.Target)
		if err != nil {
			continue
		}
		edge, err := entities.NewRawEdge(source, target, dto.Relation)
		if err != nil {
			c.logger.Warn("Skipping edge", zap.Error(err))
			continue
		}
		payload.Edges = append(payload.Edges, edge)
	}

	return payload
}
