package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pier/internal/httpx"
	"pier/internal/services"
)

// QueryHandlers exposes the read-only reporting endpoints under /query.
type QueryHandlers struct {
	reports services.ReportService
}

func NewQueryHandlers(reports services.ReportService) *QueryHandlers {
	return &QueryHandlers{reports: reports}
}

func (h *QueryHandlers) Routes(r chi.Router) {
	r.Route("/query", func(r chi.Router) {
		r.Get("/order_history", h.orderHistory)
		r.Get("/count_billing_orders", h.countBillingOrders)
		r.Get("/count_by_shipping_zip", h.countByShippingZip)
		r.Get("/instore_shoppers", h.instoreShoppers)
	})
}

func (h *QueryHandlers) orderHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	history, err := h.reports.OrderHistory(r.Context(), services.OrderHistoryQuery{
		Email: q.Get("email"),
		Phone: q.Get("phone"),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	out := make([]orderPayload, len(history.Orders))
	for i, o := range history.Orders {
		out[i] = buildOrderPayload(o)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *QueryHandlers) countBillingOrders(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.BillingZipCounts(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildZipCountPayloads(counts))
}

func (h *QueryHandlers) countByShippingZip(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.ShippingZipCounts(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildZipCountPayloads(counts))
}

func (h *QueryHandlers) instoreShoppers(w http.ResponseWriter, r *http.Request) {
	topK := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("top_k")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_query", "top_k must be a positive integer", http.StatusBadRequest))
			return
		}
		topK = n
	}

	shoppers, err := h.reports.InstoreShoppers(r.Context(), topK)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	out := make([]shopperPayload, len(shoppers))
	for i, s := range shoppers {
		out[i] = shopperPayload{CustomerID: s.CustomerID, OrderCount: s.OrderCount}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
