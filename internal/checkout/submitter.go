package checkout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"fiveheart_storefront/internal/models"

	"go.uber.org/zap"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
)

var (
	ErrInvalidForm          = errors.New("checkout form is invalid")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrAlreadyConfirmed     = errors.New("order already confirmed")
	ErrNotConfirmed         = errors.New("no confirmed order to dismiss")
	ErrSubmissionFailed     = errors.New("failed to log order")
)

type Cart interface {
	Load(ctx context.Context, cartID string) ([]models.CartItem, error)
	Clear(ctx context.Context, cartID string) error
}

// OrderSender transmet la commande au service de logging, avec le cookie de l'appelant
type OrderSender interface {
	Send(ctx context.Context, order models.Order, cookie string) error
}

type Notifier interface {
	OrderConfirmed(ctx context.Context, order models.Order) error
}

// Submitter porte une tentative de checkout :
// Idle → Validating → Idle (erreurs) | Submitting → Confirmed | Idle (échec, panier intact)
type Submitter struct {
	mu       sync.Mutex
	state    State
	form     Form
	errors   FieldErrors
	order    *models.Order
	cartID   string
	cart     Cart
	sender   OrderSender
	notifier Notifier
	log      *zap.Logger
}

func NewSubmitter(cartID string, cart Cart, sender OrderSender, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		state:  StateIdle,
		errors: FieldErrors{},
		cartID: cartID,
		cart:   cart,
		sender: sender,
		log:    log,
	}
}

func (s *Submitter) WithNotifier(n Notifier) *Submitter {
	s.notifier = n
	return s
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submitter) Errors() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.errors)
}

func (s *Submitter) SetForm(f Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
	s.errors = FieldErrors{}
}

// Edit modifie un champ et efface l'erreur associée
func (s *Submitter) Edit(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.form.Set(field, value); err != nil {
		return err
	}
	delete(s.errors, field)
	return nil
}

// Submit valide le formulaire, envoie la commande et vide le panier en cas de succès.
// Sur échec d'envoi on revient à Idle sans toucher au panier.
func (s *Submitter) Submit(ctx context.Context, cookie string) (models.Order, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting, StateValidating:
		s.mu.Unlock()
		return models.Order{}, ErrSubmissionInProgress
	case StateConfirmed:
		s.mu.Unlock()
		return models.Order{}, ErrAlreadyConfirmed
	}

	s.state = StateValidating
	if errs := s.form.Validate(); len(errs) > 0 {
		s.errors = errs
		s.state = StateIdle
		s.mu.Unlock()
		return models.Order{}, ErrInvalidForm
	}
	s.errors = FieldErrors{}
	s.state = StateSubmitting
	form := s.form
	s.mu.Unlock()

	order, err := s.send(ctx, form, cookie)
	if err != nil {
		s.transition(StateIdle, nil)
		return models.Order{}, err
	}

	if err := s.cart.Clear(ctx, s.cartID); err != nil {
		// la commande est déjà loggée en amont : on confirme quand même
		s.log.Error("❌ Vidage du panier impossible après commande",
			zap.String("cart_id", s.cartID), zap.Error(err))
	}
	s.transition(StateConfirmed, &order)

	s.log.Info("✅ Commande confirmée",
		zap.String("cart_id", s.cartID),
		zap.String("email", order.UserEmail),
		zap.Float64("total", order.TotalAmount),
		zap.Int("courses", len(order.PurchasedCourses)))

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmed(ctx, order); err != nil {
			s.log.Warn("⚠️ Email de confirmation non envoyé", zap.Error(err))
		}
	}
	return order, nil
}

func (s *Submitter) send(ctx context.Context, form Form, cookie string) (models.Order, error) {
	items, err := s.cart.Load(ctx, s.cartID)
	if err != nil {
		return models.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	order := BuildOrder(form, items)
	if err := s.sender.Send(ctx, order, cookie); err != nil {
		s.log.Error("❌ Erreur logging commande", zap.String("cart_id", s.cartID), zap.Error(err))
		return models.Order{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return order, nil
}

// Dismiss ferme la confirmation et repart d'un formulaire vide
func (s *Submitter) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfirmed {
		return ErrNotConfirmed
	}
	s.state = StateIdle
	s.form = Form{}
	s.order = nil
	return nil
}

// Order renvoie la dernière commande confirmée, nil sinon
func (s *Submitter) Order() *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

func (s *Submitter) transition(state State, order *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.order = order
}
