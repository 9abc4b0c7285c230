// Package routes wires the HTTP handlers into the fiber app.
package routes

import (
	"kosh/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Wallet        *handlers.WalletHandler
	MoneyRequests *handlers.MoneyRequestHandler
	Transactions  *handlers.TransactionHandler
	Health        *handlers.HealthHandler

	// Metrics serves the prometheus exposition; nil leaves /metrics unmounted.
	Metrics fiber.Handler
}

// SetupRoutes configures all application routes. authenticate guards
// everything except signup, login, health and metrics.
func SetupRoutes(app *fiber.App, h Handlers, authenticate fiber.Handler) {
	app.Get("/health", h.Health.Check)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/signup", h.Users.Signup)
	users.Post("/login", h.Auth.Login)
	users.Post("/logout", authenticate, h.Auth.Logout)
	users.Post("/set-pin", authenticate, h.Users.SetPin)
	users.Get("/balance", authenticate, h.Users.Balance)
	users.Get("/search", authenticate, h.Users.Search)

	wallet := api.Group("/wallet", authenticate)
	wallet.Post("/credit", h.Wallet.Credit)
	wallet.Post("/transfer", h.Wallet.Transfer)
	wallet.Get("/transactions", h.Transactions.List)
	wallet.Get("/requests", h.MoneyRequests.List)
	wallet.Post("/requests", h.MoneyRequests.Create)
	wallet.Post("/requests/:id/respond", h.MoneyRequests.Respond)
}
