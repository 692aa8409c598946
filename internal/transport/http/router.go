package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

const requestTimeout = 30 * time.Second

// RouterDeps — зависимости HTTP-слоя.
type RouterDeps struct {
	Placer      *checkout.Placer
	Orders      *order.Service
	Cart        *cart.Service
	Catalog     *catalog.Service
	Idempotency domain.IdempotencyRepository
	Logger      *log.Entry
}

// NewRouter собирает chi-маршрутизатор витрины.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	ordersHandler := NewOrdersHandler(deps.Placer, deps.Orders, deps.Cart, logger.WithField("handler", "orders"))
	cartHandler := NewCartHandler(deps.Cart, logger.WithField("handler", "cart"))
	productsHandler := NewProductsHandler(deps.Catalog, logger.WithField("handler", "products"))
	idem := NewIdempotencyMiddleware(deps.Idempotency, logger.WithField("handler", "idempotency"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		// Каталог читается без аутентификации; личные рекомендации
		// используют пользователя из заголовка, если он передан.
		r.Route("/products", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", productsHandler.List)
			r.Get("/categories", productsHandler.Categories)
			r.Get("/featured/popular", productsHandler.Popular)
			r.Get("/recommendations/personal", productsHandler.Recommendations)
			r.Get("/{productID}", productsHandler.Get)

			// Управление каталогом доступно только администратору.
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware, RequireAdmin)
				r.Post("/", productsHandler.AdminCreate)
				r.Put("/{productID}", productsHandler.AdminUpdate)
				r.Delete("/{productID}", productsHandler.AdminDeactivate)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(AuthMiddleware)
			r.Get("/", cartHandler.Get)
			r.Post("/add", cartHandler.Add)
			r.Put("/update/{lineID}", cartHandler.UpdateQty)
			r.Delete("/remove/{lineID}", cartHandler.Remove)
			r.Delete("/clear", cartHandler.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(AuthMiddleware)
			r.With(idem.Wrap).Post("/create", ordersHandler.Create)
			r.Get("/my-orders", ordersHandler.ListMy)
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/all", ordersHandler.AdminListAll)
				r.Put("/{orderID}/status", ordersHandler.AdminSetStatus)
			})
			r.Get("/{orderID}", ordersHandler.Get)
			r.Post("/{orderID}/reorder", ordersHandler.Reorder)
		})
	})

	return r
}

// optionalAuth кладёт пользователя в контекст, не требуя его наличия.
func optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := strings.TrimSpace(r.Header.Get(headerUserID)); userID != "" {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}
