package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/trackshop-system/internal/middleware"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина trackshop.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{slug}", h.GetProduct)

		r.Post("/quote", h.CreateQuote)
		r.Post("/contact", h.CreateContact)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/auth/me", h.Me)

			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.AddToCart)
			r.Put("/cart/update", h.UpdateCart)
			r.Delete("/cart/remove", h.RemoveFromCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/promo", h.ApplyPromo)

			r.Get("/wishlist", h.GetWishlist)
			r.Post("/wishlist", h.AddToWishlist)
			r.Delete("/wishlist/{productID}", h.RemoveFromWishlist)

			r.Post("/razorpay/order", h.CreateOrder)
			r.Post("/razorpay/verify", h.VerifyPayment)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{number}", h.GetOrder)
			r.Put("/orders/{number}/cancel", h.CancelOrder)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireRole(model.RoleAdmin))

				r.Get("/admin/dashboard", h.Dashboard)

				r.Post("/admin/products", h.AdminCreateProduct)
				r.Put("/admin/products/{id}", h.AdminUpdateProduct)
				r.Delete("/admin/products/{id}", h.AdminDeleteProduct)

				r.Put("/admin/orders/{number}/status", h.AdminUpdateOrderStatus)

				r.Get("/admin/promos", h.AdminListPromos)
				r.Post("/admin/promos", h.AdminCreatePromo)
				r.Put("/admin/promos/{code}", h.AdminUpdatePromo)
				r.Delete("/admin/promos/{code}", h.AdminDeletePromo)

				r.Get("/admin/quotes", h.AdminListQuotes)
				r.Get("/admin/quotes/{reference}", h.AdminGetQuote)
				r.Put("/admin/quotes/{reference}", h.AdminUpdateQuoteStatus)
				r.Get("/admin/contacts", h.AdminListContacts)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
