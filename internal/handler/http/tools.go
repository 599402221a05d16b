package http

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/internal/service"
	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
	"github.com/vuquimar/api-rei-do-pano/pkg/httputil"
	"github.com/vuquimar/api-rei-do-pano/pkg/validator"
)

// ToolNameSearchProducts is the only tool the service currently exposes.
const ToolNameSearchProducts = "search_products"

// ToolHandler serves tool discovery and invocation.
type ToolHandler struct {
	service         *service.SearchService
	defaultPageSize int
	logger          *slog.Logger
}

// NewToolHandler creates the tool endpoints handler.
func NewToolHandler(svc *service.SearchService, defaultPageSize int, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{
		service:         svc,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

// --- Wire types ---

// SearchParams are the parameters of the search_products tool. Page
// coordinates left absent take their defaults; explicit out-of-range values
// are rejected rather than silently clamped.
type SearchParams struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ToolCallRequest is the body of POST /tool_call.
type ToolCallRequest struct {
	ToolName string       `json:"tool_name" validate:"required"`
	Params   SearchParams `json:"params"`
	UserID   string       `json:"user_id"`
}

type toolResultItem struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PriceCash float64 `json:"price_cash"`
}

type toolResult struct {
	Items      []toolResultItem `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
}

type toolCallResponse struct {
	Tools []toolResult `json:"tools"`
}

// --- Handlers ---

// ListTools handles GET /tools: the descriptor the agent reads to discover
// the search tool and its parameter schema.
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	descriptor := map[string]any{
		"tools": []map[string]any{
			{
				"name": ToolNameSearchProducts,
				"description": "Busca produtos por nome, código ou código de barras. " +
					"Uma busca vazia lista o catálogo inteiro.",
				"input_schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":     map[string]any{"type": "string", "description": "Termo de busca"},
						"page":      map[string]any{"type": "integer", "description": "Página (1, 2, 3...)", "default": 1},
						"page_size": map[string]any{"type": "integer", "description": "Itens por página", "default": h.defaultPageSize},
						"user_id":   map[string]any{"type": "string", "description": "ID do usuário", "default": "default"},
					},
				},
			},
		},
	}

	httputil.WriteJSON(w, http.StatusOK, descriptor)
}

// ToolCall handles POST /tool_call: validates the envelope, dispatches to
// the named tool, and answers with the tool result envelope.
func (h *ToolHandler) ToolCall(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	req := ToolCallRequest{
		Params: SearchParams{Page: 1, PageSize: h.defaultPageSize},
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if req.ToolName != ToolNameSearchProducts {
		httputil.WriteError(w, r, apperrors.NotFound("tool", req.ToolName), h.logger)
		return
	}

	result, err := h.service.Search(r.Context(), req.Params.Query, req.Params.Page, req.Params.PageSize)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.DebugContext(r.Context(), "tool call served",
		slog.String("tool", req.ToolName),
		slog.String("user_id", req.UserID),
		slog.Int("results", len(result.Items)),
	)

	httputil.WriteJSON(w, http.StatusOK, toolCallResponse{
		Tools: []toolResult{toToolResult(result)},
	})
}

func toToolResult(page domain.ResultPage) toolResult {
	items := make([]toolResultItem, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toolResultItem{
			Code:      p.Code,
			Name:      p.Name,
			Price:     round2(p.Price),
			PriceCash: round2(p.PriceCash),
		})
	}
	return toolResult{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext(),
	}
}

// round2 keeps prices at two decimal places on the wire; the ERP sometimes
// ships artifacts like 39.900000000000006.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
