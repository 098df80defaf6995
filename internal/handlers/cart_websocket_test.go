package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fiveheart_storefront/internal/cart"
	"fiveheart_storefront/internal/middleware"
	"fiveheart_storefront/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wsEvent struct {
	Type  string            `json:"type"`
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestCartWebSocket_StreamsUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := cart.NewRedisStore(rdb, time.Hour)
	svc, err := cart.NewService(store, "http://fiveheart.ddev.site", zap.NewNop())
	require.NoError(t, err)
	svc.WithPublisher(store)

	h := New(Deps{Cart: svc, Events: store, Log: zap.NewNop()})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CartIDKey, testCart)
		c.Next()
	})
	r.GET("/api/cart/ws", h.CartWebSocket)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/cart/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readEvent(t, conn).Type)

	initial := readEvent(t, conn)
	assert.Equal(t, "cart_updated", initial.Type)
	assert.Equal(t, 0, initial.Count)

	ctx := context.Background()
	_, err = svc.Append(ctx, testCart, models.Course{NID: "7", Title: "AWS", Price: "20"})
	require.NoError(t, err)

	updated := readEvent(t, conn)
	assert.Equal(t, "cart_updated", updated.Type)
	assert.Equal(t, 1, updated.Count)
	assert.Equal(t, 20.0, updated.Total)

	require.NoError(t, svc.Clear(ctx, testCart))
	cleared := readEvent(t, conn)
	assert.Equal(t, 0, cleared.Count)
}

func TestCartWebSocket_RejectsUnknownOrigin(t *testing.T) {
	svc, err := cart.NewService(cart.NewMemoryStore(), "http://fiveheart.ddev.site", zap.NewNop())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := New(Deps{Cart: svc, Events: cart.NewRedisStore(rdb, time.Hour), Origins: []string{"http://fiveheart.test"}})
	r := gin.New()
	r.GET("/ws", h.CartWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{"Origin": {"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCartWebSocket_DisabledWithoutEvents(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/api/cart/ws", New(Deps{}).CartWebSocket)

	w := f.do(http.MethodGet, "/api/cart/ws", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestCartWebSocket_ClosedOnShutdown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := cart.NewRedisStore(rdb, time.Hour)
	svc, err := cart.NewService(store, "http://fiveheart.ddev.site", zap.NewNop())
	require.NoError(t, err)

	h := New(Deps{Cart: svc, Events: store})
	r := gin.New()
	r.GET("/ws", h.CartWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "connected", readEvent(t, conn).Type)
	assert.Equal(t, "cart_updated", readEvent(t, conn).Type)

	h.CloseStreams()
	h.CloseStreams()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
