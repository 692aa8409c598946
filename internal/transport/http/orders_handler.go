package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

// OrdersHandler обслуживает оформление и чтение заказов.
type OrdersHandler struct {
	placer *checkout.Placer
	orders *order.Service
	cart   *cart.Service
	logger *log.Entry
}

// NewOrdersHandler создаёт обработчик заказов.
func NewOrdersHandler(placer *checkout.Placer, orders *order.Service, cartSvc *cart.Service, logger *log.Entry) *OrdersHandler {
	if logger == nil {
		logger = log.New().WithField("component", "orders_handler")
	}
	return &OrdersHandler{placer: placer, orders: orders, cart: cartSvc, logger: logger}
}

type createOrderRequestDTO struct {
	PaymentMethod  string `json:"payment_method"`
	PaymentDetails struct {
		CardNumber string `json:"card_number"`
	} `json:"payment_details"`
	Notes string `json:"notes"`
}

type createOrderResponseDTO struct {
	OrderID       string  `json:"orderId"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentStatus string  `json:"paymentStatus"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req createOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.placer.PlaceOrder(r.Context(), checkout.PlaceOrderInput{
		UserID:        userID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		PaymentDetails: domain.PaymentDetails{
			CardNumber: req.PaymentDetails.CardNumber,
		},
		Notes: req.Notes,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, createOrderResponseDTO{
		OrderID:       result.OrderID,
		TotalAmount:   money(result.TotalMinor),
		PaymentStatus: string(result.PaymentStatus),
	})
}

func (h *OrdersHandler) ListMy(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	orders, err := h.orders.ListByUser(userID, limit, offset)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	got, err := h.orders.Get(userID, orderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(got))
}

func (h *OrdersHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	view, err := h.cart.Reorder(userID, orderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewDTO(view))
}

func (h *OrdersHandler) AdminListAll(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	orders, err := h.orders.ListAll(filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

type setStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req setStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orders.SetStatus(orderID, domain.OrderStatus(req.Status)); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"orderId": orderID, "status": req.Status})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
