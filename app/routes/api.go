// Package routes assembles the HTTP surface: repositories → services →
// controllers, then every endpoint under /api plus the ops routes.
package routes

import (
	"net/http"
	"time"

	"github.com/lumenera/backend/app/controllers"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/metrics"
	"github.com/lumenera/backend/pkg/middleware"
	"github.com/lumenera/backend/pkg/payment"
	"github.com/lumenera/backend/pkg/response"
	"github.com/lumenera/backend/pkg/router"
	"github.com/lumenera/backend/pkg/ws"
)

// RegisterAPI wires the storefront endpoints. Call after database.Connect.
func RegisterAPI(r *router.Router, hub *ws.Hub) {
	products := repositories.NewProductRepository()
	users := repositories.NewUserRepository()
	orders := repositories.NewOrderRepository()
	gateway := payment.New(config.StripeSecretKey())

	authService := services.NewAuthService(users)
	cartService := services.NewCartService(users)
	productService := services.NewProductService(products)
	checkoutService := services.NewCheckoutService(orders, products, users, gateway)

	userC := controllers.NewUserController(authService)
	productC := controllers.NewProductController(productService)
	cartC := controllers.NewCartController(cartService)
	orderC := controllers.NewOrderController(checkoutService)
	emailC := controllers.NewEmailController(authService)
	catalogQL := controllers.NewCatalogGraphQL(productService)

	api := r.Group("/api")

	// Credential endpoints get a per-IP limit against brute forcing.
	user := api.Group("/user", middleware.RateLimit(30, time.Minute))
	user.Post("/register", "user.register", userC.Register)
	user.Post("/login", "user.login", userC.Login)
	user.Post("/admin", "user.admin", userC.AdminLogin)

	product := api.Group("/product")
	product.Get("/list", "product.list", productC.List)
	product.Post("/single", "product.single", productC.Single)
	product.Post("/add", "product.add", productC.Add, middleware.AdminAuth)
	product.Post("/remove", "product.remove", productC.Remove, middleware.AdminAuth)

	cart := api.Group("/cart", middleware.UserAuth)
	cart.Post("/get", "cart.get", cartC.Get)
	cart.Post("/add", "cart.add", cartC.Add)
	cart.Post("/update", "cart.update", cartC.Update)

	order := api.Group("/order")
	order.Post("/place", "order.place", orderC.Place, middleware.UserAuth)
	order.Post("/stripe", "order.stripe", orderC.PlaceStripe, middleware.UserAuth)
	order.Post("/verifyStripe", "order.verify_stripe", orderC.VerifyStripe, middleware.UserAuth)
	order.Post("/userorders", "order.user_orders", orderC.UserOrders, middleware.UserAuth)
	order.Post("/list", "order.list", orderC.List, middleware.AdminAuth)
	order.Post("/status", "order.status", orderC.UpdateStatus, middleware.AdminAuth)

	email := api.Group("/email", middleware.RateLimit(30, time.Minute))
	email.Post("/send-email", "email.send", emailC.SendPurchase)
	email.Post("/subscribe", "email.subscribe", emailC.Subscribe)
	email.Post("/forgot-password", "email.forgot_password", emailC.ForgotPassword)
	email.Post("/reset-password", "email.reset_password", emailC.ResetPassword)

	api.Post("/graphql", "catalog.graphql", catalogQL.ServeHTTP)

	registerOps(r, hub)
}

// registerOps mounts the health check, metrics and the admin order feed.
func registerOps(r *router.Router, hub *ws.Hub) {
	r.Get("/", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "API Working")
	})
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/ws/admin/orders", "ws.admin_orders", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, hub)
	}, middleware.AdminAuth)
}
