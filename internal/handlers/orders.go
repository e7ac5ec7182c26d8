package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pier/internal/httpx"
	"pier/internal/services"
	"pier/internal/validation"
	"pier/models"
)

// timeOfOrderLayouts are tried in order. Values without an offset are UTC.
// The caller's offset is kept so the time-of-day rule sees the submitted clock.
var timeOfOrderLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

type createOrderRequest struct {
	Order struct {
		CustomerID       int64  `json:"customer_id"`
		TimeOfOrder      string `json:"time_of_order"`
		Source           string `json:"source"`
		BillingAddressID int64  `json:"billing_address_id"`
	} `json:"order"`
	Items []services.OrderItemInput `json:"items"`
}

// OrderHandlers exposes order creation and lookup.
type OrderHandlers struct {
	orders services.OrderService
}

func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

func (h *OrderHandlers) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/{orderID}", h.getOrder)
	})
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var at time.Time
	if raw := strings.TrimSpace(req.Order.TimeOfOrder); raw != "" {
		parsed, ok := parseTimeOfOrder(raw)
		if !ok {
			writeServiceError(ctx, w, validation.FieldErrors{
				"order.time_of_order": "must be RFC 3339, YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD",
			})
			return
		}
		at = parsed
	}

	cmd := services.CreateOrderCommand{
		Order: services.OrderHeaderInput{
			CustomerID:       req.Order.CustomerID,
			TimeOfOrder:      at,
			Source:           models.OrderSource(strings.TrimSpace(req.Order.Source)),
			BillingAddressID: req.Order.BillingAddressID,
		},
		Items: req.Items,
	}

	order, err := h.orders.CreateOrder(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := idParam(w, r, "orderID")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildOrderPayload(order))
}

func parseTimeOfOrder(raw string) (time.Time, bool) {
	for _, layout := range timeOfOrderLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
