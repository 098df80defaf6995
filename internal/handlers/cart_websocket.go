package handlers

import (
	"net/http"
	"time"

	"fiveheart_storefront/internal/cart"
	"fiveheart_storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type cartMessage struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	Items   any      `json:"items,omitempty"`
	Total   *float64 `json:"total,omitempty"`
	Count   *int     `json:"count,omitempty"`
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Pas d'Origin : client non navigateur
			return origin == "" || len(h.origins) == 0 || h.origins[origin]
		},
	}
}

// CartWebSocket gère la synchronisation temps réel du panier entre onglets
func (h *Handler) CartWebSocket(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Cart sync unavailable"})
		return
	}
	select {
	case <-h.stop:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server shutting down"})
		return
	default:
	}
	cartID := middleware.CartID(c)

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("❌ Erreur upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// S'abonner avant le premier envoi pour ne rater aucune notification
	pubsub := h.events.Subscribe(ctx, cartID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error("❌ Abonnement panier impossible", zap.String("cart_id", cartID), zap.Error(err))
		return
	}
	ch := pubsub.Channel()

	// Le client ne parle pas : la lecture sert à détecter la fermeture
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeJSON(conn, cartMessage{Type: "connected", Message: "Cart sync enabled"}); err != nil {
		return
	}
	if err := h.pushCart(c, conn, cartID); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != cart.EventUpdated && msg.Payload != cart.EventCleared {
				continue
			}
			if err := h.pushCart(c, conn, cartID); err != nil {
				h.log.Warn("❌ Erreur envoi WebSocket", zap.Error(err))
				return
			}
		case <-ticker.C:
			// Ping pour garder la connexion active
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-h.stop:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
			return
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) pushCart(c *gin.Context, conn *websocket.Conn, cartID string) error {
	items, err := h.cart.Load(c.Request.Context(), cartID)
	if err != nil {
		h.log.Warn("⚠️ Lecture panier pour synchro impossible", zap.String("cart_id", cartID), zap.Error(err))
		items = nil
	}
	view := cartView(items)
	return h.writeJSON(conn, cartMessage{
		Type:  "cart_updated",
		Items: view.Items,
		Total: &view.Total,
		Count: &view.Count,
	})
}

func (h *Handler) writeJSON(conn *websocket.Conn, msg cartMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
