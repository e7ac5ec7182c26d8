package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pier/internal/httpx"
	"pier/internal/intake"
	"pier/internal/services"
	"pier/internal/validation"
)

// writeServiceError maps service errors onto the HTTP taxonomy. Anything
// unrecognised is logged and answered with a generic 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "one or more fields are invalid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": map[string]string(fields)}))
		return
	}

	switch {
	case errors.Is(err, services.ErrOrderReferenceNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("reference_not_found", violationMessage(err), http.StatusNotFound).
			WithDetails(violationDetails(err)))
	case errors.Is(err, services.ErrOrderRejected):
		httpx.WriteError(ctx, w, httpx.NewError("order_rejected", violationMessage(err), http.StatusUnprocessableEntity).
			WithDetails(violationDetails(err)))
	case errors.Is(err, services.ErrCustomerNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("customer_not_found", "customer not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAddressNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("address_not_found", "address not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAssetNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("asset_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCustomerConflict):
		httpx.WriteError(ctx, w, httpx.NewError("customer_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrReportInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_query", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCustomerInvalidInput),
		errors.Is(err, services.ErrAddressInvalidInput),
		errors.Is(err, services.ErrAssetInvalidInput),
		errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusUnprocessableEntity))
	default:
		loggerFrom(ctx).Error("request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

func violationMessage(err error) string {
	var v *intake.Violation
	if errors.As(err, &v) {
		return v.Error()
	}
	return err.Error()
}

func violationDetails(err error) map[string]any {
	var v *intake.Violation
	if !errors.As(err, &v) {
		return nil
	}
	details := map[string]any{"rule": string(v.Rule)}
	if v.ItemIndex >= 0 {
		details["item_index"] = v.ItemIndex
	}
	if len(v.AddressIDs) > 0 {
		details["address_ids"] = v.AddressIDs
	}
	if v.Routing != nil {
		details["modality"] = string(v.Routing.Modality)
		details["missing"] = fieldNames(v.Routing.Missing)
		details["unexpected"] = fieldNames(v.Routing.Unexpected)
	}
	return details
}
