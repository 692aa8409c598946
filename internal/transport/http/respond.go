package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ErrorResponse — единый формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// money переводит минорные единицы в доллары для внешнего API.
func money(minor int64) float64 {
	return float64(minor) / 100
}

// minorFromMoney переводит доллары из запроса в минорные единицы.
func minorFromMoney(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// respondDomainError переводит доменные ошибки в HTTP-статусы. Ошибки
// оформления заказа — клиентские (400): состояние системы они не меняют.
func respondDomainError(w http.ResponseWriter, logger *log.Entry, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	case errors.Is(err, domain.ErrProductUnavailable):
		respondError(w, http.StatusBadRequest, "product_unavailable", err.Error())
	case errors.Is(err, domain.ErrUnknownVariant):
		respondError(w, http.StatusBadRequest, "unknown_variant", err.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		respondError(w, http.StatusBadRequest, "payment_declined", err.Error())
	case errors.Is(err, domain.ErrPaymentMethodInvalid),
		errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrProductRequired),
		errors.Is(err, domain.ErrOrderStatusInvalid),
		errors.Is(err, domain.ErrProductNameRequired),
		errors.Is(err, domain.ErrCategoryRequired),
		errors.Is(err, domain.ErrPriceInvalid),
		errors.Is(err, domain.ErrStockInvalid):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCartLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrCartLineDuplicate),
		errors.Is(err, domain.ErrProductAlreadyExists):
		respondError(w, http.StatusConflict, "already_exists", err.Error())
	default:
		if logger != nil {
			logger.WithError(err).Error("request failed")
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
