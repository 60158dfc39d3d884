package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/debounce"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(id, name, category, price string) domain.Product {
	return domain.Product{ID: id, Name: name, Category: category, Price: decimal.RequireFromString(price)}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Product{
		product("1", "Wireless Headphones", "Electronics", "10.00"),
		product("2", "Cotton T-Shirt", "Clothing", "20.00"),
		product("3", "Desk Lamp", "Home", "5.50"),
	})
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Get(ctx context.Context, sessionID string) ([]domain.CartLineItem, error) {
	args := m.Called(ctx, sessionID)
	items, _ := args.Get(0).([]domain.CartLineItem)
	return items, args.Error(1)
}

func (m *mockRepo) Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error {
	args := m.Called(ctx, sessionID, items)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *mockEvents) PublishOrderPlaced(ctx context.Context, sessionID string, r checkout.Receipt) error {
	args := m.Called(ctx, sessionID, r)
	return args.Error(0)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, _, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// fakeNow is a settable clock for session timestamps.
type fakeNow struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeNow) Add(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func instantSubmitter() checkout.Submitter {
	return checkout.SubmitterFunc(func(context.Context, checkout.Order) error { return nil })
}

func validForm() checkout.Form {
	return checkout.Form{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Address:   "12 St James's Square",
		City:      "London",
		ZipCode:   "SW1Y 4JH",
		Country:   "UK",
	}
}

// sessionFixture bundles a session with the doubles behind it.
type sessionFixture struct {
	session  *Session
	repo     *memory.SnapshotRepository
	notifier *recordingNotifier
	clock    *debounce.ManualClock
}

func newSessionFixture(t *testing.T, opts ...func(*SessionConfig)) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		repo:     memory.NewSnapshotRepository(),
		notifier: &recordingNotifier{},
		clock:    debounce.NewManualClock(epoch),
	}
	cfg := SessionConfig{
		Catalog:   testCatalog(t),
		Repo:      f.repo,
		Notifier:  f.notifier,
		Submitter: instantSubmitter(),
		Clock:     f.clock,
		Logger:    discardLogger(),
		Now:       f.clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s, err := NewSession(context.Background(), "sess-1", cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	f.session = s
	return f
}
