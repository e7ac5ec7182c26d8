package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pier/internal/httpx"
	"pier/internal/services"
)

// CustomerHandlers exposes customer and address endpoints.
type CustomerHandlers struct {
	customers services.CustomerService
}

func NewCustomerHandlers(customers services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customers: customers}
}

// Routes registers /customers and /addresses.
func (h *CustomerHandlers) Routes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.createCustomer)
		r.Get("/{customerID}", h.getCustomer)
		r.Post("/{customerID}/addresses", h.addAddress)
		r.Get("/{customerID}/addresses", h.listAddresses)
	})
	r.Get("/addresses/{addressID}", h.getAddress)
}

func (h *CustomerHandlers) createCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd services.CreateCustomerCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	customer, err := h.customers.CreateCustomer(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerID")
	if !ok {
		return
	}
	customer, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) addAddress(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerID")
	if !ok {
		return
	}
	var cmd services.CreateAddressCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	cmd.CustomerID = customerID

	address, err := h.customers.AddAddress(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildAddressPayload(address))
}

func (h *CustomerHandlers) listAddresses(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerID")
	if !ok {
		return
	}
	addresses, err := h.customers.ListAddresses(r.Context(), customerID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	out := make([]addressPayload, len(addresses))
	for i, a := range addresses {
		out[i] = buildAddressPayload(a)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *CustomerHandlers) getAddress(w http.ResponseWriter, r *http.Request) {
	addressID, ok := idParam(w, r, "addressID")
	if !ok {
		return
	}
	address, err := h.customers.GetAddress(r.Context(), addressID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildAddressPayload(address))
}
