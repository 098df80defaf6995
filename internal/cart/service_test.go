package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"fiveheart_storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, cartID, event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, cartID+":"+event)
	return nil
}

func newTestService(t *testing.T) (*Service, *MemoryStore, *recordingPublisher) {
	t.Helper()
	store := NewMemoryStore()
	pub := &recordingPublisher{}
	svc, err := NewService(store, "http://fiveheart.ddev.site", zap.NewNop())
	require.NoError(t, err)
	return svc.WithPublisher(pub), store, pub
}

func seed(t *testing.T, store *MemoryStore, cartID, raw string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), cartID, []byte(raw)))
}

func TestService_LoadWithoutStoredCart(t *testing.T) {
	svc, store, _ := newTestService(t)

	items, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, items)

	data, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, data, "nothing should be written for a cart that never existed")
}

func TestService_LoadRepairsStoredShape(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "c1", `[{"nid":"5","title":{"value":"Go"},"field_course_price":"19.90"},{"nid":"5","title":"Go 2","price":"21"}]`)

	items, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	data, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)

	var stored []models.CartItem
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, items, stored)
	assert.Equal(t, "Go 2", stored[0].Title)
	assert.Equal(t, 21.0, stored[0].Price)
	assert.NotContains(t, string(data), "field_course_price")
}

func TestService_LoadResetsCorruptCart(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "c1", `not-json`)

	items, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, items)

	data, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestService_RemoveAtMiddle(t *testing.T) {
	svc, store, pub := newTestService(t)
	seed(t, store, "c1", `[{"nid":"a","price":1},{"nid":"b","price":2},{"nid":"c","price":3}]`)

	items, err := svc.RemoveAt(context.Background(), "c1", 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].NID)
	assert.Equal(t, "c", items[1].NID)

	reloaded, err := svc.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, items, reloaded)
	assert.Equal(t, []string{"c1:" + EventUpdated}, pub.events)
}

func TestService_RemoveAtOutOfRange(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "c1", `[{"nid":"a"}]`)

	_, err := svc.RemoveAt(context.Background(), "c1", 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = svc.RemoveAt(context.Background(), "c1", -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestService_AppendResolvesRelativeImage(t *testing.T) {
	svc, _, pub := newTestService(t)

	items, err := svc.Append(context.Background(), "c1", models.Course{
		NID:      "12",
		Title:    "Kubernetes Fundamentals",
		Price:    "450.00",
		ImageURL: "/sites/default/files/k8s.png",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "12", item.ID)
	assert.Equal(t, 450.0, item.Price)
	assert.Equal(t, DefaultBrand, item.BrandName)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, "http://fiveheart.ddev.site/sites/default/files/k8s.png", *item.ImageURL)
	assert.Equal(t, []string{"c1:" + EventUpdated}, pub.events)
}

func TestService_AppendDefaultsAndAbsoluteImage(t *testing.T) {
	svc, _, _ := newTestService(t)

	item := svc.ItemFromCourse(models.Course{NID: "3", Price: "Free", ImageURL: "https://cdn.example.com/a.png"})
	assert.Equal(t, DefaultTitle, item.Title)
	assert.Equal(t, 0.0, item.Price)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *item.ImageURL)

	assert.Nil(t, svc.ItemFromCourse(models.Course{NID: "4"}).ImageURL)
}

func TestService_RepeatedAppendCollapses(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	course := models.Course{NID: "12", Title: "Terraform", Price: "100"}
	_, err := svc.Append(ctx, "c1", course)
	require.NoError(t, err)

	course.Price = "80"
	appended, err := svc.Append(ctx, "c1", course)
	require.NoError(t, err)
	require.Len(t, appended, 1)
	assert.Equal(t, 80.0, appended[0].Price)

	raw, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), `"nid":"12"`), "storage keeps the raw append")

	items, err := svc.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, appended, items)
}

func TestService_Clear(t *testing.T) {
	svc, store, pub := newTestService(t)
	seed(t, store, "c1", `[{"nid":"a"}]`)

	require.NoError(t, svc.Clear(context.Background(), "c1"))

	data, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, []string{"c1:" + EventCleared}, pub.events)
}
