package routes

import (
	"fiveheart_storefront/internal/handlers"
	"fiveheart_storefront/internal/middleware"
	"fiveheart_storefront/internal/proxy"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type Deps struct {
	Handler  *handlers.Handler
	Proxy    *proxy.Proxy
	Sessions sessions.Store
	Limiter  middleware.RateCounter
	Log      *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", d.Handler.Health)

	// Contenu CMS (lecture seule), les règles portent déjà le préfixe /api
	d.Proxy.Register(r)

	api := r.Group("/api")

	// Commandes
	api.POST("/log-purchase", d.Handler.LogPurchase)

	session := middleware.Session(d.Sessions, d.Log)

	// Panier
	cart := api.Group("/cart", session)
	{
		cart.GET("", d.Handler.GetCart)
		cart.GET("/ws", d.Handler.CartWebSocket)
		cart.DELETE("", d.Handler.ClearCart)
		cart.DELETE("/items/:index", d.Handler.RemoveFromCart)

		add := []gin.HandlerFunc{}
		if d.Limiter != nil {
			add = append(add, middleware.CartRateLimit(d.Limiter, middleware.CartAddMaxRequests, middleware.CartAddWindow, d.Log))
		}
		cart.POST("/items", append(add, d.Handler.AddToCart)...)
	}

	// Checkout
	checkout := api.Group("/checkout", session)
	{
		checkout.POST("", d.Handler.Checkout)
		checkout.POST("/validate", d.Handler.ValidateCheckout)
	}
}
