package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pier/internal/httpx"
	"pier/internal/services"
)

// AssetHandlers exposes the store, warehouse and item endpoints.
type AssetHandlers struct {
	assets services.AssetService
}

func NewAssetHandlers(assets services.AssetService) *AssetHandlers {
	return &AssetHandlers{assets: assets}
}

func (h *AssetHandlers) Routes(r chi.Router) {
	r.Post("/stores", h.createStore)
	r.Get("/stores/{storeID}", h.getStore)
	r.Post("/warehouses", h.createWarehouse)
	r.Get("/warehouses/{warehouseID}", h.getWarehouse)
	r.Post("/items", h.createItem)
	r.Get("/items/{itemID}", h.getItem)
}

func (h *AssetHandlers) createStore(w http.ResponseWriter, r *http.Request) {
	var cmd services.CreateAssetCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	store, err := h.assets.CreateStore(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storePayload{StoreID: store.StoreID, Name: store.Name})
}

func (h *AssetHandlers) getStore(w http.ResponseWriter, r *http.Request) {
	storeID, ok := idParam(w, r, "storeID")
	if !ok {
		return
	}
	store, err := h.assets.GetStore(r.Context(), storeID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storePayload{StoreID: store.StoreID, Name: store.Name})
}

func (h *AssetHandlers) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var cmd services.CreateAssetCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	warehouse, err := h.assets.CreateWarehouse(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, warehousePayload{WarehouseID: warehouse.WarehouseID, Name: warehouse.Name})
}

func (h *AssetHandlers) getWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := idParam(w, r, "warehouseID")
	if !ok {
		return
	}
	warehouse, err := h.assets.GetWarehouse(r.Context(), warehouseID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, warehousePayload{WarehouseID: warehouse.WarehouseID, Name: warehouse.Name})
}

func (h *AssetHandlers) createItem(w http.ResponseWriter, r *http.Request) {
	var cmd services.CreateItemCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	item, err := h.assets.CreateItem(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, itemPayload{ItemID: item.ItemID, Name: item.Name, Description: item.Description})
}

func (h *AssetHandlers) getItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}
	item, err := h.assets.GetItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, itemPayload{ItemID: item.ItemID, Name: item.Name, Description: item.Description})
}
