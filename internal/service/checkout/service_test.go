package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	engine "github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/payment"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/service/catalog"
	"github.com/kirinyoku/tix-checkout/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memSessions round-trips sessions through JSON like the Redis store does.
type memSessions struct {
	mu     sync.Mutex
	data   map[uuid.UUID][]byte
	locked map[uuid.UUID]bool
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[uuid.UUID][]byte{}, locked: map[uuid.UUID]bool{}}
}

func (m *memSessions) Save(_ context.Context, s *engine.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = b
	return nil
}

func (m *memSessions) Load(_ context.Context, id uuid.UUID) (*engine.Session, error) {
	m.mu.Lock()
	b, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	var s engine.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memSessions) Lock(_ context.Context, id uuid.UUID, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[id] {
		return false, nil
	}
	m.locked[id] = true
	return true, nil
}

func (m *memSessions) Unlock(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locked, id)
	return nil
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	args := m.Called(ctx, eventID)
	types, _ := args.Get(0).([]domain.TicketType)
	return types, args.Error(1)
}

func (m *mockCatalog) Invalidate(ctx context.Context, eventID int64) error {
	return m.Called(ctx, eventID).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Create(ctx context.Context, b *domain.BookingConfirmation, after ...uow.AfterCommit) error {
	err := m.Called(ctx, b).Error(0)
	if err == nil {
		for _, h := range after {
			h(ctx)
		}
	}
	return err
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Receipt, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*payment.Receipt)
	return r, args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, paymentID string) error {
	return m.Called(ctx, paymentID).Error(0)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, subject string) (redisrepo.Decision, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(redisrepo.Decision), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) PublishEventChanged(ctx context.Context, eventID int64, reason string) error {
	return m.Called(ctx, eventID, reason).Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishBookingConfirmed(ctx context.Context, b *domain.BookingConfirmation) error {
	return m.Called(ctx, b).Error(0)
}

type fixture struct {
	svc      *Service
	sessions *memSessions
	catalog  *mockCatalog
	bookings *mockBookings
	gateway  *mockGateway
	limiter  *mockLimiter
	notifier *mockNotifier
	events   *mockEvents
}

var (
	alice = domain.Principal{UserID: "alice", Role: domain.RoleCustomer}
	bob   = domain.Principal{UserID: "bob", Role: domain.RoleCustomer}
)

func ticketTypes() []domain.TicketType {
	return []domain.TicketType{
		{ID: "general", EventID: 7, Name: "General Admission", UnitPrice: 1500, AvailableQuantity: 100},
		{ID: "vip", EventID: 7, Name: "VIP", UnitPrice: 5000, AvailableQuantity: 4},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessions: newMemSessions(),
		catalog:  new(mockCatalog),
		bookings: new(mockBookings),
		gateway:  new(mockGateway),
		limiter:  new(mockLimiter),
		notifier: new(mockNotifier),
		events:   new(mockEvents),
	}

	f.svc = New(Deps{
		Sessions: f.sessions,
		Catalog:  f.catalog,
		Bookings: f.bookings,
		Gateway:  f.gateway,
		Limiter:  f.limiter,
		Notifier: f.notifier,
		Events:   f.events,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Config{Currency: "KES", PaymentTimeout: time.Second})

	return f
}

func (f *fixture) start(t *testing.T) *engine.Session {
	t.Helper()

	f.catalog.On("ListTicketTypes", mock.Anything, int64(7)).Return(ticketTypes(), nil)

	sess, err := f.svc.Start(context.Background(), alice, 7)
	require.NoError(t, err)

	return sess
}

func (f *fixture) toPayment(t *testing.T, sess *engine.Session) {
	t.Helper()

	_, err := f.svc.SelectTickets(context.Background(), alice, sess.ID, "general", 2)
	require.NoError(t, err)

	_, err = f.svc.Continue(context.Background(), alice, sess.ID)
	require.NoError(t, err)
}

func validCard() domain.PaymentFields {
	return domain.PaymentFields{
		CardNumber:  "4242 4242 4242 4242",
		CardName:    "Alice Doe",
		ExpiryDate:  "12/29",
		CVV:         "123",
		AcceptTerms: true,
	}
}

func TestStart(t *testing.T) {
	f := newFixture(t)

	sess := f.start(t)

	assert.Equal(t, domain.StepSelectingTickets, sess.Step)
	assert.Equal(t, "alice", sess.UserID)
	assert.Len(t, sess.TicketTypes, 2)

	got, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestStart_EventNotFound(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("ListTicketTypes", mock.Anything, int64(404)).
		Return(nil, fmt.Errorf("service.catalog.GetEvent:%w", catalog.ErrEventNotFound)).Once()

	_, err := f.svc.Start(context.Background(), alice, 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGet_Ownership(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)

	_, err := f.svc.Get(context.Background(), bob, sess.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(context.Background(), alice, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSelectTickets_PersistsAndSummarises(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)

	got, err := f.svc.SelectTickets(context.Background(), alice, sess.ID, "general", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSummary{Subtotal: 3000, ServiceFee: 150, Total: 3150}, got.Summary())

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Selection{"general": 2}, reloaded.Selection)

	_, err = f.svc.SelectTickets(context.Background(), alice, sess.ID, "vip", 5)
	assert.ErrorIs(t, err, engine.ErrInvalidQuantity)
}

func TestApplyPromo(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	_, err := f.svc.SelectTickets(context.Background(), alice, sess.ID, "general", 2)
	require.NoError(t, err)

	f.limiter.On("Allow", mock.Anything, "alice").Return(redisrepo.Decision{Allowed: true, Current: 1}, nil).Twice()

	got, applied, err := f.svc.ApplyPromo(context.Background(), alice, sess.ID, " earlybird10 ")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(300), got.Summary().Discount)
	assert.Equal(t, int64(2850), got.Summary().Total)

	got, applied, err = f.svc.ApplyPromo(context.Background(), alice, sess.ID, "NOPE")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "EARLYBIRD10", got.PromoCode)

	f.limiter.AssertExpectations(t)
}

func TestApplyPromo_RateLimited(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)

	f.limiter.On("Allow", mock.Anything, "alice").
		Return(redisrepo.Decision{Allowed: false, Current: 10, RetryAfter: 20 * time.Second}, nil).Once()

	_, _, err := f.svc.ApplyPromo(context.Background(), alice, sess.ID, "VIP20")
	require.ErrorIs(t, err, ErrRateLimited)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 20*time.Second, rl.RetryAfter)

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.PromoCode)
}

func TestContinueAndBack(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)

	_, err := f.svc.Continue(context.Background(), alice, sess.ID)
	assert.ErrorIs(t, err, engine.ErrNoTicketsSelected)

	f.toPayment(t, sess)

	got, err := f.svc.Back(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSelectingTickets, got.Step)
	assert.Equal(t, domain.Selection{"general": 2}, got.Selection)
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(r payment.ChargeRequest) bool {
		return r.Amount == 3150 && r.Currency == "KES"
	})).Return(&payment.Receipt{PaymentID: "pay_1", Amount: 3150, ProcessedAt: time.Now().UTC()}, nil).Once()
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.BookingConfirmation")).Return(nil).Once()
	f.catalog.On("Invalidate", mock.Anything, int64(7)).Return(nil).Once()
	f.notifier.On("PublishEventChanged", mock.Anything, int64(7), redisrepo.ReasonInventory).Return(nil).Once()
	f.events.On("PublishBookingConfirmed", mock.Anything, mock.AnythingOfType("*domain.BookingConfirmation")).Return(nil).Once()

	conf, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
	require.NoError(t, err)

	assert.Equal(t, "pay_1", conf.PaymentID)
	assert.Equal(t, int64(3150), conf.Summary.Total)
	assert.Equal(t, "alice", conf.UserID)

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmed, reloaded.Step)
	assert.Equal(t, conf.Reference, reloaded.Confirmation.Reference)

	_, err = f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
	assert.ErrorIs(t, err, engine.ErrInvalidStep)

	f.gateway.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestSubmit_ValidationFailsWithoutCharging(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	fields := validCard()
	fields.AcceptTerms = false

	_, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, fields)

	var ve *engine.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "accept_terms", ve.Field)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestSubmit_Declined(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	f.gateway.On("Charge", mock.Anything, mock.Anything).
		Return(nil, &payment.Error{Kind: payment.KindDeclined, Reason: "card declined"}).Once()

	_, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
	require.ErrorIs(t, err, payment.ErrDeclined)

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEnteringPayment, reloaded.Step)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_SoldOutRefunds(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	f.gateway.On("Charge", mock.Anything, mock.Anything).
		Return(&payment.Receipt{PaymentID: "pay_2", Amount: 3150, ProcessedAt: time.Now().UTC()}, nil).Once()
	f.bookings.On("Create", mock.Anything, mock.Anything).
		Return(errors.Join(errors.New("postgres.BookingRepo.Create"), repository.ErrSoldOut)).Once()
	f.gateway.On("Refund", mock.Anything, "pay_2").Return(nil).Once()
	f.catalog.On("Invalidate", mock.Anything, int64(7)).Return(nil).Once()

	_, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
	require.ErrorIs(t, err, ErrSoldOut)

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepEnteringPayment, reloaded.Step)
	assert.Nil(t, reloaded.Confirmation)

	f.gateway.AssertExpectations(t)
	f.events.AssertNotCalled(t, "PublishBookingConfirmed", mock.Anything, mock.Anything)
}

func TestSubmit_Busy(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	ok, err := f.sessions.Lock(context.Background(), sess.ID, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
	assert.ErrorIs(t, err, ErrSessionBusy)
}

func TestSubmit_OtherUser(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	_, err := f.svc.Submit(context.Background(), bob, sess.ID, domain.PaymentCard, validCard())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMutationsWaitForInFlightSubmit(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	charging := make(chan struct{})
	release := make(chan struct{})

	f.gateway.On("Charge", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(charging)
			<-release
		}).
		Return(&payment.Receipt{PaymentID: "pay_3", Amount: 3150, ProcessedAt: time.Now().UTC()}, nil).Once()
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.catalog.On("Invalidate", mock.Anything, int64(7)).Return(nil).Once()
	f.notifier.On("PublishEventChanged", mock.Anything, int64(7), redisrepo.ReasonInventory).Return(nil).Once()
	f.events.On("PublishBookingConfirmed", mock.Anything, mock.Anything).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())
		done <- err
	}()

	<-charging

	_, err := f.svc.Back(context.Background(), alice, sess.ID)
	assert.ErrorIs(t, err, ErrSessionBusy)

	_, err = f.svc.SelectTickets(context.Background(), alice, sess.ID, "general", 1)
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(release)
	require.NoError(t, <-done)

	reloaded, err := f.svc.Get(context.Background(), alice, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmed, reloaded.Step)
	require.NotNil(t, reloaded.Confirmation)
	assert.Equal(t, "pay_3", reloaded.Confirmation.PaymentID)

	_, err = f.svc.Back(context.Background(), alice, sess.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidStep)
}

func TestMutate_ReleasesLock(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)

	_, err := f.svc.SelectTickets(context.Background(), alice, sess.ID, "general", 1)
	require.NoError(t, err)

	ok, err := f.sessions.Lock(context.Background(), sess.ID, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmit_AlreadyBookedRefunds(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	f.toPayment(t, sess)

	f.gateway.On("Charge", mock.Anything, mock.Anything).
		Return(&payment.Receipt{PaymentID: "pay_4", Amount: 3150, ProcessedAt: time.Now().UTC()}, nil).Once()
	f.bookings.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("postgres.BookingRepo.Create:%w", repository.ErrConflict)).Once()
	f.gateway.On("Refund", mock.Anything, "pay_4").Return(nil).Once()
	f.catalog.On("Invalidate", mock.Anything, int64(7)).Return(nil).Once()

	_, err := f.svc.Submit(context.Background(), alice, sess.ID, domain.PaymentCard, validCard())

	require.ErrorIs(t, err, ErrAlreadyBooked)
	f.gateway.AssertExpectations(t)
}
