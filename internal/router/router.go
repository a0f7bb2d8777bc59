package router // route registration for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lucascassio/trocalivros/internal/config"
	"github.com/lucascassio/trocalivros/internal/handler"
	"github.com/lucascassio/trocalivros/internal/middleware"
	"github.com/lucascassio/trocalivros/internal/repository"
)

// Handlers bundles every resource handler the router wires up.
type Handlers struct {
	Users         *handler.UserHandler
	Books         *handler.BookHandler
	Trades        *handler.TradeHandler
	Notifications *handler.NotificationHandler
	Ratings       *handler.RatingHandler
}

// Register mounts all routes on the Echo instance. Everything under
// /api shares the rate limiter; routes past the three public auth
// entry points additionally require a valid, non-revoked bearer token.
func Register(e *echo.Echo, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client, tokens *repository.TokenRepo, h Handlers) {
	// Liveness probe and static cover images stay outside the API group
	// so they are never rate limited or authenticated.
	e.GET("/healthz", handler.Health)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")
	api.Use(middleware.NewTokenBucket(rlCfg, rdb))

	// Public: account creation, login and the password reset, which
	// carries its own proof of identity in the body.
	api.POST("/users", h.Users.Register)
	api.POST("/users/authenticate", h.Users.Authenticate)
	api.PATCH("/users/reset-password", h.Users.ResetPassword)

	auth := api.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret, tokens))

	// Users.
	auth.POST("/users/logout", h.Users.Logout)
	auth.GET("/users", h.Users.List)
	auth.GET("/users/:id", h.Users.Get)
	auth.PUT("/users/:id", h.Users.Update)
	auth.DELETE("/users/:id", h.Users.Delete)

	// Books. The literal routes are registered before the :id routes so
	// "my-books" never parses as an id.
	auth.POST("/books", h.Books.Create)
	auth.GET("/books", h.Books.List)
	auth.GET("/books/my-books", h.Books.ListMine)
	auth.GET("/books/user/:userId", h.Books.ListByUser)
	auth.GET("/books/genre/:value", h.Books.FilterByGenre)
	auth.GET("/books/author/:value", h.Books.FilterByAuthor)
	auth.GET("/books/publisher/:value", h.Books.FilterByPublisher)
	auth.GET("/books/title/:value", h.Books.FilterByTitle)
	auth.GET("/books/year/:value", h.Books.FilterByYear)
	auth.GET("/books/:id", h.Books.Get)
	auth.PUT("/books/:id", h.Books.Update)
	auth.DELETE("/books/:id", h.Books.Delete)

	// Trades.
	auth.POST("/trades", h.Trades.Propose)
	auth.GET("/trades/requester", h.Trades.ListMine)
	auth.GET("/trades/received", h.Trades.ListReceived)
	auth.GET("/trades/:id", h.Trades.Get)
	auth.PUT("/trades/:id", h.Trades.UpdateDetails)
	auth.PATCH("/trades/:id/status", h.Trades.ChangeStatus)
	auth.PATCH("/trades/:id/contact-info", h.Trades.ContactInfo)

	// Notifications.
	auth.GET("/notifications/get-notifications", h.Notifications.List)
	auth.PUT("/notifications/:id/mark-as-read", h.Notifications.MarkRead)
	auth.DELETE("/notifications/:id/delete", h.Notifications.Delete)

	// Ratings.
	auth.POST("/ratings", h.Ratings.Create)
	auth.GET("/ratings/my-ratings", h.Ratings.ListMine)
	auth.GET("/ratings/user/:userId", h.Ratings.ListForUser)
	auth.GET("/ratings/:id", h.Ratings.Get)
	auth.PUT("/ratings/:id", h.Ratings.Update)
	auth.DELETE("/ratings/:id", h.Ratings.Delete)
}
