package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fiveheart_storefront/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service regroupe toutes les opérations sur le panier d'une session.
// Aucune protection contre les écritures concurrentes : un seul onglet écrit à la fois.
type Service struct {
	store  Store
	events Publisher
	assets *url.URL
	log    *zap.Logger
}

func NewService(store Store, assetBaseURL string, log *zap.Logger) (*Service, error) {
	assets, err := url.Parse(assetBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid asset base URL %q: %w", assetBaseURL, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, assets: assets, log: log}, nil
}

func (s *Service) WithPublisher(p Publisher) *Service {
	s.events = p
	return s
}

// Load lit le panier, le normalise puis réécrit la forme canonique
// (réparation à la lecture des anciens formats).
func (s *Service) Load(ctx context.Context, cartID string) ([]models.CartItem, error) {
	data, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []models.CartItem{}, nil
	}

	items, err := Normalize(data)
	if err != nil {
		if !errors.Is(err, ErrCorruptCart) {
			return nil, err
		}
		s.log.Warn("⚠️ Panier corrompu, réparation",
			zap.String("cart_id", cartID), zap.Error(err))
	}

	if err := s.save(ctx, cartID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Append ajoute un cours tel que renvoyé par la page détail. Le stockage garde
// l'ajout brut, la vue renvoyée est déjà fusionnée comme le ferait Load.
func (s *Service) Append(ctx context.Context, cartID string, course models.Course) ([]models.CartItem, error) {
	items, err := s.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	item := s.ItemFromCourse(course)
	items = append(items, item)
	if err := s.save(ctx, cartID, items); err != nil {
		return nil, err
	}

	s.log.Info("🛒 Cours ajouté au panier",
		zap.String("cart_id", cartID), zap.String("nid", item.NID), zap.Float64("price", item.Price))
	s.publish(ctx, cartID, EventUpdated)
	return collapse(items), nil
}

// RemoveAt retire la ligne à la position index du panier affiché
func (s *Service) RemoveAt(ctx context.Context, cartID string, index int) ([]models.CartItem, error) {
	items, err := s.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d (cart has %d items)", ErrIndexOutOfRange, index, len(items))
	}

	updated := make([]models.CartItem, 0, len(items)-1)
	updated = append(updated, items[:index]...)
	updated = append(updated, items[index+1:]...)
	if err := s.save(ctx, cartID, updated); err != nil {
		return nil, err
	}

	s.publish(ctx, cartID, EventUpdated)
	return updated, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Clear(ctx, cartID); err != nil {
		return err
	}
	s.publish(ctx, cartID, EventCleared)
	return nil
}

// ItemFromCourse construit la ligne canonique d'un cours. Les URLs d'image
// relatives sont résolues sur l'hôte des assets.
func (s *Service) ItemFromCourse(course models.Course) models.CartItem {
	item := models.CartItem{
		ID:        string(course.NID),
		NID:       string(course.NID),
		Title:     course.Title,
		BrandName: course.BrandName,
		Price:     parseAmount(string(course.Price)),
		ImageURL:  s.resolveAsset(course.ImageURL),
	}
	if item.ID == "" {
		item.ID = fallbackIDPrefix + uuid.NewString()
	}
	if strings.TrimSpace(item.Title) == "" {
		item.Title = DefaultTitle
	}
	if item.BrandName == "" {
		item.BrandName = DefaultBrand
	}
	return item
}

func (s *Service) resolveAsset(ref string) *string {
	if ref == "" {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	if !u.IsAbs() {
		u = s.assets.ResolveReference(u)
	}
	resolved := u.String()
	return &resolved
}

func (s *Service) save(ctx context.Context, cartID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.store.Set(ctx, cartID, data)
}

func (s *Service) publish(ctx context.Context, cartID, event string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, cartID, event); err != nil {
		s.log.Warn("⚠️ Notification panier impossible", zap.String("cart_id", cartID), zap.Error(err))
	}
}
