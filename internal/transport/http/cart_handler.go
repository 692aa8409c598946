package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
)

// CartHandler обслуживает операции с корзиной. Каждая мутация возвращает
// обновлённую корзину, чтобы клиенту не требовался повторный запрос.
type CartHandler struct {
	cart   *cart.Service
	logger *log.Entry
}

// NewCartHandler создаёт обработчик корзины.
func NewCartHandler(cartSvc *cart.Service, logger *log.Entry) *CartHandler {
	if logger == nil {
		logger = log.New().WithField("component", "cart_handler")
	}
	return &CartHandler{cart: cartSvc, logger: logger}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.View(userIDFromContext(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartViewDTO(view))
}

type addItemRequestDTO struct {
	ProductID      string   `json:"product_id"`
	Quantity       int32    `json:"quantity"`
	Customizations []string `json:"customizations"`
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := h.cart.Add(userID, req.ProductID, req.Quantity, req.Customizations); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondView(w, userID, http.StatusCreated)
}

type updateQtyRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

func (h *CartHandler) UpdateQty(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	lineID := chi.URLParam(r, "lineID")

	var req updateQtyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.cart.UpdateQty(userID, lineID, req.Quantity); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondView(w, userID, http.StatusOK)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	lineID := chi.URLParam(r, "lineID")

	if err := h.cart.Remove(userID, lineID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondView(w, userID, http.StatusOK)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	if err := h.cart.Clear(userID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondView(w, userID, http.StatusOK)
}

func (h *CartHandler) respondView(w http.ResponseWriter, userID string, status int) {
	view, err := h.cart.View(userID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, status, toCartViewDTO(view))
}
