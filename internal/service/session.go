package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/confirm"
	"github.com/utafrali/storefront/internal/debounce"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Dialog texts for destructive cart actions.
const (
	removeItemTitle   = "Remove Item"
	removeItemMessage = "Are you sure you want to remove \"%s\" from your cart?"
	clearCartTitle    = "Clear Cart"
	clearCartMessage  = "Are you sure you want to clear your entire cart? This action cannot be undone."
	removeConfirmText = "Yes, Remove"
)

// DecreaseOutcome says what a decrease request did.
type DecreaseOutcome string

const (
	DecreaseNoop                 DecreaseOutcome = "noop"
	DecreaseApplied              DecreaseOutcome = "updated"
	DecreaseConfirmationRequired DecreaseOutcome = "confirmation_required"
)

// SessionConfig holds the collaborators shared by every session.
type SessionConfig struct {
	Catalog     *catalog.Catalog
	Repo        repository.SnapshotRepository
	Notifier    Notifier
	Events      EventPublisher
	Submitter   checkout.Submitter
	Navigator   checkout.Navigator
	SearchDelay time.Duration
	Clock       debounce.Clock
	Logger      *slog.Logger
	Now         func() time.Time
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Notifier == nil {
		c.Notifier = NewLogNotifier(c.Logger)
	}
	if c.Events == nil {
		c.Events = nopEvents{}
	}
	if c.Submitter == nil {
		c.Submitter = checkout.NewSimulatedSubmitter(checkout.DefaultSubmitDelay)
	}
	if c.Navigator == nil {
		c.Navigator = checkout.PathNavigator{}
	}
	if c.SearchDelay <= 0 {
		c.SearchDelay = debounce.DefaultDelay
	}
	if c.Clock == nil {
		c.Clock = debounce.SystemClock
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// CheckoutState is what the checkout view shows.
type CheckoutState struct {
	Status    checkout.Status         `json:"status"`
	Receipt   *checkout.Receipt       `json:"receipt,omitempty"`
	Dialog    *checkout.SuccessDialog `json:"dialog,omitempty"`
	LastError string                  `json:"last_error,omitempty"`
}

// Snapshot is a consistent copy of everything a session shows.
type Snapshot struct {
	SessionID    string
	Cart         domain.Cart
	Search       SearchState
	Confirmation *confirm.Request
	Checkout     CheckoutState
	Notices      []Notice
}

// Session is the state one browser tab used to own: a cart, a search box,
// the confirmation dialog and the checkout form. Every event, whether an
// HTTP call or a timer firing, runs under the session lock, one at a time.
type Session struct {
	id  string
	cfg SessionConfig

	mu       sync.Mutex
	cart     *CartStore
	search   *SearchBox
	confirm  *confirm.Workflow
	checkout *checkout.Flow
	notices  []Notice
	closed   bool

	lastSeen atomic.Int64
}

// NewSession opens the session's cart and wires its components.
func NewSession(ctx context.Context, id string, cfg SessionConfig) (*Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	cfg = cfg.withDefaults()

	ctx = logger.WithSessionID(ctx, id)
	cart, err := OpenCartStore(ctx, id, cfg.Repo, cfg.Events, cfg.Logger)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      id,
		cfg:     cfg,
		cart:    cart,
		confirm: confirm.New(),
	}
	s.search = NewSearchBox(cfg.Catalog.DefaultPriceRange(), debounce.New(cfg.SearchDelay,
		debounce.WithClock(cfg.Clock),
		debounce.WithDispatcher(s.Do),
	))
	s.checkout = checkout.NewFlow(cart,
		checkout.WithSubmitter(cfg.Submitter),
		checkout.WithNavigator(cfg.Navigator),
		checkout.WithDispatcher(s.Do),
		checkout.WithOnPlaced(s.orderPlaced),
		checkout.WithLogger(cfg.Logger),
		checkout.WithNow(cfg.Now),
	)
	s.touch()

	return s, nil
}

// ID is the session identifier.
func (s *Session) ID() string { return s.id }

// Do runs fn under the session lock. Timer callbacks enter the session
// through Do.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Session) touch() {
	s.lastSeen.Store(s.cfg.Now().UnixNano())
}

// LastSeen is when the session was last handed to a caller.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Cart:      s.cart.Cart(),
		Search:    s.search.State(s.cfg.Catalog.MaxPrice()),
		Checkout:  s.checkoutStateLocked(),
		Notices:   append([]Notice(nil), s.notices...),
	}
	if req, ok := s.confirm.Pending(); ok {
		snap.Confirmation = &req
	}
	return snap
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

// AddItem puts one unit of the catalog product productID in the cart.
func (s *Session) AddItem(ctx context.Context, productID string) (domain.CartLineItem, error) {
	p, err := s.cfg.Catalog.Get(productID)
	if err != nil {
		return domain.CartLineItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.AddItem(ctx, p)
	s.notify(ctx, p.Name+" added to cart! 🛒")
	item, _ := s.cart.Item(productID)
	return item, nil
}

// IncreaseQuantity adds one unit to a line. It reports false when the
// product is not in the cart.
func (s *Session) IncreaseQuantity(ctx context.Context, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cart.Item(productID)
	if !ok {
		return false
	}
	s.cart.IncreaseQuantity(ctx, productID)
	s.notify(ctx, "Quantity updated for "+item.Name+"! 📦")
	return true
}

// DecreaseQuantity removes one unit from a line. The last unit is never
// removed directly: the shopper is asked to confirm instead, and the
// returned request describes that dialog.
func (s *Session) DecreaseQuantity(ctx context.Context, productID string) (DecreaseOutcome, *confirm.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cart.Item(productID)
	if !ok {
		return DecreaseNoop, nil
	}
	if item.Quantity == 1 {
		req := s.askRemoveLocked(item)
		return DecreaseConfirmationRequired, &req
	}

	s.cart.DecreaseQuantity(ctx, productID)
	s.notify(ctx, "Quantity updated for "+item.Name+"! 📦")
	return DecreaseApplied, nil
}

// RemoveItem asks the shopper to confirm removing a line. It reports false,
// and asks nothing, when the product is not in the cart.
func (s *Session) RemoveItem(_ context.Context, productID string) (confirm.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cart.Item(productID)
	if !ok {
		return confirm.Request{}, false
	}
	return s.askRemoveLocked(item), true
}

// ClearCart asks the shopper to confirm emptying the cart. An empty cart has
// nothing to clear and asks nothing.
func (s *Session) ClearCart(_ context.Context) (confirm.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Cart().IsEmpty() {
		return confirm.Request{}, false
	}
	return s.askLocked(confirm.Request{
		Title:       clearCartTitle,
		Message:     clearCartMessage,
		ConfirmText: removeConfirmText,
		OnConfirm: func(ctx context.Context) {
			s.cart.Clear(ctx)
			s.notify(ctx, "Cart cleared! 🗑️")
		},
	}), true
}

func (s *Session) askRemoveLocked(item domain.CartLineItem) confirm.Request {
	id, name := item.ID, item.Name
	return s.askLocked(confirm.Request{
		Title:       removeItemTitle,
		Message:     fmt.Sprintf(removeItemMessage, name),
		ConfirmText: removeConfirmText,
		OnConfirm: func(ctx context.Context) {
			s.cart.RemoveItem(ctx, id)
			s.notify(ctx, name+" removed from cart! 🗑️")
		},
	})
}

func (s *Session) askLocked(req confirm.Request) confirm.Request {
	confirmationsTotal.WithLabelValues("requested").Inc()
	return s.confirm.Ask(req)
}

// ---------------------------------------------------------------------------
// Confirmation dialog
// ---------------------------------------------------------------------------

// Confirmation returns the open dialog, if any.
func (s *Session) Confirmation() (confirm.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirm.Pending()
}

// Confirm runs the pending dialog's action. id may be empty; otherwise it
// must name the open dialog.
func (s *Session) Confirm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.confirm.Confirm(ctx, id)
	switch {
	case err == nil:
		confirmationsTotal.WithLabelValues("confirmed").Inc()
		return nil
	case errors.Is(err, confirm.ErrNothingPending):
		return apperrors.ConflictWrap(err, "no confirmation is pending")
	case errors.Is(err, confirm.ErrStaleConfirmation):
		return apperrors.ConflictWrap(err, "confirmation was replaced by a newer request")
	default:
		return err
	}
}

// CancelConfirmation closes the dialog without acting.
func (s *Session) CancelConfirmation() bool {
	return s.closeDialog((*confirm.Workflow).Cancel)
}

// DismissConfirmation is a click outside the dialog.
func (s *Session) DismissConfirmation() bool {
	return s.closeDialog((*confirm.Workflow).Dismiss)
}

// KeyPress forwards a key to the dialog; Escape closes it.
func (s *Session) KeyPress(key string) bool {
	return s.closeDialog(func(w *confirm.Workflow) bool { return w.KeyPress(key) })
}

func (s *Session) closeDialog(fn func(*confirm.Workflow) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := fn(s.confirm)
	if closed {
		confirmationsTotal.WithLabelValues("cancelled").Inc()
	}
	return closed
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Search runs fn with exclusive access to the search box and returns the
// resulting state.
func (s *Session) Search(fn func(b *SearchBox)) SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fn != nil {
		fn(s.search)
	}
	return s.search.State(s.cfg.Catalog.MaxPrice())
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

// SubmitOrder starts placing an order for the current cart. Field errors
// come back as *validator.ValidationError.
func (s *Session) SubmitOrder(ctx context.Context, form checkout.Form) (checkout.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.checkout.Submit(ctx, form)
	switch {
	case err == nil:
		return order, nil
	case errors.Is(err, checkout.ErrAlreadySubmitting):
		return order, apperrors.ConflictWrap(err, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		return order, apperrors.ConflictWrap(err, "your cart is empty")
	default:
		return order, err
	}
}

// CheckoutState returns the checkout view.
func (s *Session) CheckoutState() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutStateLocked()
}

func (s *Session) checkoutStateLocked() CheckoutState {
	st := CheckoutState{
		Status:    s.checkout.Status(),
		LastError: s.checkout.LastError(),
	}
	if r, ok := s.checkout.Receipt(); ok {
		st.Receipt = &r
		dialog := checkout.OrderPlacedDialog
		st.Dialog = &dialog
	}
	return st
}

// TeardownCheckout is the checkout view going away: a submission in flight
// is abandoned and the cart left as it is.
func (s *Session) TeardownCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Teardown()
}

// AcknowledgeOrder closes the success dialog and returns where to go next.
func (s *Session) AcknowledgeOrder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.checkout.Acknowledge(ctx)
	if err != nil {
		return "", apperrors.ConflictWrap(err, err.Error())
	}
	return target, nil
}

// orderPlaced runs on the session loop once the cart has been cleared.
func (s *Session) orderPlaced(ctx context.Context, r checkout.Receipt) {
	ordersPlacedTotal.Inc()
	s.notify(ctx, "Order placed successfully! 🎉")

	if err := s.cfg.Events.PublishOrderPlaced(ctx, s.id, r); err != nil {
		eventPublishErrorsTotal.WithLabelValues("order.placed").Inc()
		logger.WithContext(ctx, s.cfg.Logger).ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()),
		)
	}

	logger.WithContext(ctx, s.cfg.Logger).InfoContext(ctx, "order placed",
		slog.String("session_id", s.id),
		slog.String("reference", r.Reference),
		slog.Int("total_items", r.TotalItems),
		slog.String("total_price", r.TotalPrice.StringFixed(2)),
	)
}

// ---------------------------------------------------------------------------
// Notices and lifecycle
// ---------------------------------------------------------------------------

// Notices returns the most recent notices, oldest first.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}

func (s *Session) notify(ctx context.Context, message string) {
	s.notices = append(s.notices, Notice{Message: message, At: s.cfg.Now().UTC()})
	if n := len(s.notices); n > maxNotices {
		s.notices = append([]Notice(nil), s.notices[n-maxNotices:]...)
	}
	s.cfg.Notifier.Notify(ctx, s.id, message)
}

// Close stops the session's timers and abandons a submission in flight.
// It waits for the submission goroutine, so it must not be called from
// inside Do.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.search.Close()
	s.checkout.Teardown()
	s.mu.Unlock()

	s.checkout.Wait()
}
