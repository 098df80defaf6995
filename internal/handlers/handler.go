package handlers

import (
	"context"
	"net/http"
	"sync"

	"fiveheart_storefront/internal/cart"
	"fiveheart_storefront/internal/checkout"
	"fiveheart_storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CourseSource est satisfait par content.Client
type CourseSource interface {
	CourseDetail(ctx context.Context, nid string) (models.Course, error)
}

// PurchaseLogger est satisfait par purchase.Forwarder
type PurchaseLogger interface {
	checkout.OrderSender
	Forward(ctx context.Context, payload []byte, cookie string) error
}

// CartEvents est satisfait par cart.RedisStore
type CartEvents interface {
	Subscribe(ctx context.Context, cartID string) *redis.PubSub
}

type Deps struct {
	Cart      *cart.Service
	Courses   CourseSource
	Purchases PurchaseLogger
	Notifier  checkout.Notifier // optionnel
	Events    CartEvents        // optionnel, active /api/cart/ws
	Origins   []string
	Log       *zap.Logger
}

type Handler struct {
	cart      *cart.Service
	courses   CourseSource
	purchases PurchaseLogger
	notifier  checkout.Notifier
	events    CartEvents
	origins   map[string]bool
	log       *zap.Logger

	// stop est fermé à l'arrêt du serveur pour libérer les websockets
	stop     chan struct{}
	stopOnce sync.Once
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	origins := make(map[string]bool, len(d.Origins))
	for _, o := range d.Origins {
		origins[o] = true
	}
	return &Handler{
		cart:      d.Cart,
		courses:   d.Courses,
		purchases: d.Purchases,
		notifier:  d.Notifier,
		events:    d.Events,
		origins:   origins,
		log:       log,
		stop:      make(chan struct{}),
	}
}

// CloseStreams termine les synchros websocket en cours. Shutdown ne ferme pas
// les connexions détournées, main l'enregistre via RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
