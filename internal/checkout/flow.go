// Package checkout drives the shipping form from editing through a
// simulated order submission to the success acknowledgment.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

var (
	// ErrAlreadySubmitting rejects a second submit while one is in flight.
	ErrAlreadySubmitting = errors.New("order is already being submitted")
	// ErrEmptyCart rejects a submit with nothing to order.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotCompleted rejects Acknowledge before an order succeeded.
	ErrNotCompleted = errors.New("no completed order to acknowledge")
)

// Status of the checkout view.
type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
)

// CartSource is the cart the flow orders from and empties on success.
type CartSource interface {
	Cart() domain.Cart
	Clear(ctx context.Context)
}

// TaxRate is applied to the subtotal. Shipping is always free.
var TaxRate = decimal.RequireFromString("0.1")

// Summary prices an order: tax on the subtotal rounded to cents, and the
// amount the customer pays.
func Summary(subtotal decimal.Decimal) (tax, grandTotal decimal.Decimal) {
	tax = subtotal.Mul(TaxRate).Round(2)
	return tax, subtotal.Add(tax)
}

// Order is the snapshot handed to the Submitter.
type Order struct {
	Reference   string                `json:"reference"`
	Form        Form                  `json:"form"`
	Items       []domain.CartLineItem `json:"items"`
	TotalItems  int                   `json:"total_items"`
	TotalPrice  decimal.Decimal       `json:"total_price"`
	Tax         decimal.Decimal       `json:"tax"`
	GrandTotal  decimal.Decimal       `json:"grand_total"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// Receipt is what the success view shows.
type Receipt struct {
	Reference  string                `json:"reference"`
	Email      string                `json:"email"`
	Items      []domain.CartLineItem `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice decimal.Decimal       `json:"total_price"`
	Tax        decimal.Decimal       `json:"tax"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	PlacedAt   time.Time             `json:"placed_at"`
}

// Option configures a Flow.
type Option func(*Flow)

// WithSubmitter replaces the simulated submitter.
func WithSubmitter(s Submitter) Option {
	return func(f *Flow) { f.submitter = s }
}

// WithNavigator sets the navigation collaborator used by Acknowledge.
func WithNavigator(n Navigator) Option {
	return func(f *Flow) { f.navigator = n }
}

// WithDispatcher routes submission completions through d. The owner's event
// loop goes here so completions never race other calls on the flow.
func WithDispatcher(d func(func())) Option {
	return func(f *Flow) { f.dispatch = d }
}

// WithOnPlaced registers a callback run after a successful order, once the
// cart has been cleared.
func WithOnPlaced(fn func(ctx context.Context, r Receipt)) Option {
	return func(f *Flow) { f.onPlaced = fn }
}

// WithLogger sets the logger for failed submissions.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithNow overrides the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Flow is the checkout state machine for one session. It is not safe for
// concurrent use: callers and the dispatcher must serialize access.
type Flow struct {
	cart      CartSource
	submitter Submitter
	navigator Navigator
	dispatch  func(func())
	onPlaced  func(ctx context.Context, r Receipt)
	logger    *slog.Logger
	now       func() time.Time

	status  Status
	receipt *Receipt
	lastErr string
	gen     uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewFlow returns a flow in the editing state.
func NewFlow(cart CartSource, opts ...Option) *Flow {
	f := &Flow{
		cart:      cart,
		submitter: NewSimulatedSubmitter(DefaultSubmitDelay),
		navigator: PathNavigator{},
		dispatch:  func(fn func()) { fn() },
		logger:    slog.Default(),
		now:       time.Now,
		status:    StatusEditing,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Status reports the current state.
func (f *Flow) Status() Status { return f.status }

// Receipt returns the last placed order while in the success state.
func (f *Flow) Receipt() (Receipt, bool) {
	if f.receipt == nil {
		return Receipt{}, false
	}
	return *f.receipt, true
}

// LastError describes why the previous submission failed, if it did.
func (f *Flow) LastError() string { return f.lastErr }

// Submit validates form and starts placing the order. It returns as soon as
// the flow is submitting; completion arrives later through the dispatcher.
// A rejected submit changes nothing.
func (f *Flow) Submit(ctx context.Context, form Form) (Order, error) {
	if f.status == StatusSubmitting {
		return Order{}, ErrAlreadySubmitting
	}

	cart := f.cart.Cart()
	if cart.IsEmpty() {
		return Order{}, ErrEmptyCart
	}

	form = form.Trimmed()
	if err := form.Validate(); err != nil {
		return Order{}, err
	}

	subtotal := cart.TotalPrice()
	tax, grandTotal := Summary(subtotal)
	order := Order{
		Reference:   uuid.New().String(),
		Form:        form,
		Items:       cart.Items,
		TotalItems:  cart.TotalItems(),
		TotalPrice:  subtotal,
		Tax:         tax,
		GrandTotal:  grandTotal,
		SubmittedAt: f.now().UTC(),
	}

	f.gen++
	gen := f.gen
	f.status = StatusSubmitting
	f.receipt = nil
	f.lastErr = ""

	// The request that started the submit ends long before the order does.
	base := context.WithoutCancel(ctx)
	runCtx, cancel := context.WithCancel(base)
	f.cancel = cancel

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		err := f.submitter.Submit(runCtx, order)
		f.dispatch(func() { f.complete(base, gen, order, err) })
	}()

	return order, nil
}

func (f *Flow) complete(ctx context.Context, gen uint64, order Order, err error) {
	if gen != f.gen || f.status != StatusSubmitting {
		return
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	if err != nil {
		f.status = StatusEditing
		f.lastErr = "order could not be placed, please try again"
		f.logger.ErrorContext(ctx, "order submission failed",
			slog.String("reference", order.Reference),
			slog.String("error", err.Error()),
		)
		return
	}

	f.status = StatusSuccess
	f.receipt = &Receipt{
		Reference:  order.Reference,
		Email:      order.Form.Email,
		Items:      order.Items,
		TotalItems: order.TotalItems,
		TotalPrice: order.TotalPrice,
		Tax:        order.Tax,
		GrandTotal: order.GrandTotal,
		PlacedAt:   f.now().UTC(),
	}
	f.cart.Clear(ctx)

	if f.onPlaced != nil {
		f.onPlaced(ctx, *f.receipt)
	}
}

// Teardown is the checkout view going away. A pending submission is
// cancelled and its completion discarded; the cart is not touched. It
// reports whether a submission was cancelled.
func (f *Flow) Teardown() bool {
	cancelled := f.cancel != nil
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.status = StatusEditing
	f.receipt = nil
	f.lastErr = ""
	return cancelled
}

// Acknowledge dismisses the success view and returns the path the
// navigator resolved for the catalog root.
func (f *Flow) Acknowledge(ctx context.Context) (string, error) {
	if f.status != StatusSuccess {
		return "", ErrNotCompleted
	}
	f.status = StatusEditing
	f.receipt = nil
	return f.navigator.Navigate(ctx, CatalogRoot), nil
}

// Wait blocks until every submission goroutine has returned. Call it after
// Teardown and outside the dispatcher, or it can deadlock.
func (f *Flow) Wait() {
	f.wg.Wait()
}
