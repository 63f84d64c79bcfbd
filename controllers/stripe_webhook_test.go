package controllers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boubamga9/Pattyly-sub000/controllers"
	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/routes"
	"github.com/boubamga9/Pattyly-sub000/sender"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

// ---- shared mocks ----

// mockLedger mirrors the real claim semantics: first claim of an id wins,
// releasing it makes the id claimable again.
type mockLedger struct {
	seen      map[string]bool
	duplicate bool
	err       error
	claimIDs  []string
	released  []string
}

func (m *mockLedger) Claim(_ context.Context, eventID, _ string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.claimIDs = append(m.claimIDs, eventID)
	if m.duplicate || m.seen[eventID] {
		return false, nil
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *mockLedger) Release(_ context.Context, eventID string) error {
	m.released = append(m.released, eventID)
	delete(m.seen, eventID)
	return nil
}

type mockOrderRepo struct {
	created   []*models.Order
	bySession *models.Order
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	m.created = append(m.created, order)
	return nil
}
func (m *mockOrderRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return nil, nil
}
func (m *mockOrderRepo) FindByStripeSessionID(_ context.Context, _ string) (*models.Order, error) {
	return m.bySession, nil
}
func (m *mockOrderRepo) FindByStripePaymentIntentID(_ context.Context, _ string) (*models.Order, error) {
	return nil, nil
}
func (m *mockOrderRepo) FindByPayPalOrderID(_ context.Context, _ string) (*models.Order, error) {
	return nil, nil
}
func (m *mockOrderRepo) FindByPayPalCaptureID(_ context.Context, _ string) (*models.Order, error) {
	return nil, nil
}
func (m *mockOrderRepo) Update(_ context.Context, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

type mockPendingRepo struct {
	created []*models.PendingOrder
	pending *models.PendingOrder
}

func (m *mockPendingRepo) Create(_ context.Context, p *models.PendingOrder) error {
	m.created = append(m.created, p)
	return nil
}
func (m *mockPendingRepo) FindByReference(_ context.Context, _ string) (*models.PendingOrder, error) {
	return m.pending, nil
}
func (m *mockPendingRepo) Delete(_ context.Context, _ uuid.UUID) error         { return nil }
func (m *mockPendingRepo) DeleteByReference(_ context.Context, _ string) error { return nil }
func (m *mockPendingRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type mockShopRepo struct {
	shop *models.Shop
}

func (m *mockShopRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Shop, error) {
	return m.shop, nil
}
func (m *mockShopRepo) FindByProfileID(_ context.Context, _ uuid.UUID) (*models.Shop, error) {
	return m.shop, nil
}
func (m *mockShopRepo) SetCustomAccepted(_ context.Context, _ uuid.UUID, _ bool) error { return nil }

type noopSender struct{}

func (noopSender) Send(_ context.Context, _, _ string, _ map[string]interface{}) (sender.SendResult, error) {
	return sender.SendResult{}, nil
}

// ---- helpers ----

type webhookTestEnv struct {
	router  *gin.Engine
	ledger  *mockLedger
	orders  *mockOrderRepo
	pending *mockPendingRepo
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	return newWebhookTestEnvWithPayPal(t, &fakePayPalClient{})
}

func newWebhookTestEnvWithPayPal(t *testing.T, paypal *fakePayPalClient) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	orders := &mockOrderRepo{}
	pending := &mockPendingRepo{}
	shops := &mockShopRepo{shop: &models.Shop{ID: uuid.New(), Name: "Test Shop"}}
	notifier := services.NewNotifier(noopSender{})

	ledger := &mockLedger{}
	wc := &controllers.WebhookController{
		Stripe:         services.NewStripeService("sk_test_123"),
		PayPal:         paypal,
		StripeLedger:   ledger,
		PayPalLedger:   &mockLedger{},
		Reconciler:     services.NewOrderReconciler(orders, pending, shops, notifier, logger),
		Subscriptions:  nil,
		Accounts:       nil,
		Logger:         logger,
		GeneralSecret:  testWebhookSecret,
		AccountsSecret: testWebhookSecret,
		PaymentsSecret: testWebhookSecret,
	}

	r := gin.New()
	routes.RegisterRoutes(r, wc, &controllers.CheckoutController{Logger: logger})
	return &webhookTestEnv{router: r, ledger: ledger, orders: orders, pending: pending}
}

// signStripePayload builds a Stripe-Signature header the real verifier accepts.
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postStripeEvent(env *webhookTestEnv, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func checkoutSessionEventPayload(eventID, sessionID, reference string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"object": "checkout.session",
				"amount_total": 3000,
				"metadata": {"reference": %q}
			}
		}
	}`, eventID, sessionID, reference))
}

// ---- tests ----

func TestStripeWebhook_MissingSignature(t *testing.T) {
	env := newWebhookTestEnv(t)

	w := postStripeEvent(env, checkoutSessionEventPayload("evt_1", "cs_1", "ref-1"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.ledger.claimIDs)
}

func TestStripeWebhook_TamperedPayload(t *testing.T) {
	env := newWebhookTestEnv(t)

	payload := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	signature := signStripePayload(payload, testWebhookSecret)
	tampered := bytes.Replace(payload, []byte("ref-1"), []byte("ref-2"), 1)

	w := postStripeEvent(env, tampered, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.orders.created)
}

func TestStripeWebhook_WrongSecret(t *testing.T) {
	env := newWebhookTestEnv(t)

	payload := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	w := postStripeEvent(env, payload, signStripePayload(payload, "whsec_other"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook_ValidEventCreatesOrder(t *testing.T) {
	env := newWebhookTestEnv(t)
	payload := models.PendingOrderPayload{
		ShopID:        uuid.New(),
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		TotalAmount:   mustDecimal("60.00"),
	}
	encoded, err := payload.Encode()
	assert.Nil(t, err)
	env.pending.pending = &models.PendingOrder{ID: uuid.New(), Reference: "ref-1", Payload: encoded}

	body := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	w := postStripeEvent(env, body, signStripePayload(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"evt_1"}, env.ledger.claimIDs)
	assert.Len(t, env.orders.created, 1)
	assert.Equal(t, "30.00", env.orders.created[0].PaidAmount.StringFixed(2))
}

func TestStripeWebhook_DuplicateEventIsAcknowledgedWithoutDispatch(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.ledger.duplicate = true

	body := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	w := postStripeEvent(env, body, signStripePayload(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.orders.created)
}

func TestStripeWebhook_RetriedEventIsReprocessedAfterTransientFailure(t *testing.T) {
	env := newWebhookTestEnv(t)

	body := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	signature := signStripePayload(body, testWebhookSecret)

	// First delivery: the pending order is not visible yet, so handling
	// fails transiently and the claim must be given back.
	w := postStripeEvent(env, body, signature)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{"evt_1"}, env.ledger.released)
	assert.Empty(t, env.orders.created)

	// The pending order lands, then the provider redelivers the same event
	// id. The retry must dispatch and reconcile, not be acked as duplicate.
	payload := models.PendingOrderPayload{
		ShopID:        uuid.New(),
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		TotalAmount:   mustDecimal("60.00"),
	}
	encoded, err := payload.Encode()
	assert.Nil(t, err)
	env.pending.pending = &models.PendingOrder{ID: uuid.New(), Reference: "ref-1", Payload: encoded}

	w = postStripeEvent(env, body, signature)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.orders.created, 1)
	assert.Equal(t, "30.00", env.orders.created[0].PaidAmount.StringFixed(2))
}

func TestStripeWebhook_UnknownEventTypeIsAcknowledged(t *testing.T) {
	env := newWebhookTestEnv(t)

	body := []byte(`{"id": "evt_9", "object": "event", "type": "charge.refunded", "data": {"object": {}}}`)
	w := postStripeEvent(env, body, signStripePayload(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeAccountsWebhook_ScopesOutPaymentEvents(t *testing.T) {
	env := newWebhookTestEnv(t)

	// A payment event landing on the accounts endpoint is acknowledged but
	// never dispatched to the reconciler.
	body := checkoutSessionEventPayload("evt_2", "cs_2", "ref-2")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe/accounts", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signStripePayload(body, testWebhookSecret))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.orders.created)
}

func TestStripeWebhook_LedgerFailureAsksForRetry(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.ledger.err = fmt.Errorf("connection reset")

	body := checkoutSessionEventPayload("evt_1", "cs_1", "ref-1")
	w := postStripeEvent(env, body, signStripePayload(body, testWebhookSecret))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
