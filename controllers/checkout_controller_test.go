package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boubamga9/Pattyly-sub000/config"
	"github.com/boubamga9/Pattyly-sub000/controllers"
	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// ---- mock payment link repository ----

type mockPaymentLinkRepo struct {
	activeLink *models.PaymentLink
	findErr    error
}

func (m *mockPaymentLinkRepo) UpsertActive(_ context.Context, _ uuid.UUID, _, _ string) error {
	return nil
}
func (m *mockPaymentLinkRepo) Deactivate(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}
func (m *mockPaymentLinkRepo) FindActive(_ context.Context, _ uuid.UUID, _ string) (*models.PaymentLink, error) {
	return m.activeLink, m.findErr
}

// ---- fake checkout session creator ----

type fakeStripeCheckout struct {
	session *stripe.CheckoutSession
	err     error
	reqs    []services.CheckoutSessionRequest
}

func (f *fakeStripeCheckout) CreateCheckoutSession(req services.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	f.reqs = append(f.reqs, req)
	return f.session, f.err
}

// ---- helpers ----

type checkoutTestEnv struct {
	router  *gin.Engine
	pending *mockPendingRepo
	stripe  *fakeStripeCheckout
	paypal  *fakePayPalClient
}

func newCheckoutTestEnv(shop *models.Shop, link *models.PaymentLink, stripeCheckout *fakeStripeCheckout, paypal *fakePayPalClient) *checkoutTestEnv {
	gin.SetMode(gin.TestMode)
	pending := &mockPendingRepo{}
	cc := &controllers.CheckoutController{
		Shops:        &mockShopRepo{shop: shop},
		PaymentLinks: &mockPaymentLinkRepo{activeLink: link},
		Pending:      pending,
		Stripe:       stripeCheckout,
		PayPal:       paypal,
		Config:       &config.Config{AppBaseURL: "https://pattyly.test"},
		Logger:       zap.NewNop(),
	}

	r := gin.New()
	r.POST("/checkout", cc.CreateCheckout)
	return &checkoutTestEnv{router: r, pending: pending, stripe: stripeCheckout, paypal: paypal}
}

func postCheckout(env *checkoutTestEnv, body map[string]interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func checkoutBody(shopID uuid.UUID, provider string) map[string]interface{} {
	return map[string]interface{}{
		"shop_id":        shopID.String(),
		"product_name":   "Fraisier",
		"customer_name":  "Alice",
		"customer_email": "alice@example.com",
		"total_amount":   "85.00",
		"provider":       provider,
	}
}

// ---- tests ----

func TestCreateCheckout_StripeHappyPath(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New(), Name: "Chez Alice"}
	link := &models.PaymentLink{ProfileID: shop.ProfileID, Provider: models.PaymentProviderStripe, AccountID: "acct_1", IsActive: true}
	stripeCheckout := &fakeStripeCheckout{session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}}
	env := newCheckoutTestEnv(shop, link, stripeCheckout, &fakePayPalClient{})

	w := postCheckout(env, checkoutBody(shop.ID, "stripe"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, env.pending.created, 1)
	assert.Len(t, stripeCheckout.reqs, 1)
	// Default deposit is half the total, charged in minor units.
	assert.Equal(t, int64(4250), stripeCheckout.reqs[0].AmountMinor)
	assert.Equal(t, "acct_1", stripeCheckout.reqs[0].ConnectedAccountID)
	assert.Equal(t, env.pending.created[0].Reference, stripeCheckout.reqs[0].Reference)

	var resp controllers.CheckoutResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", resp.CheckoutURL)
	assert.Equal(t, "42.50", resp.PaidAmount)
}

func TestCreateCheckout_PayPalUsesOrderIDAsReference(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New(), Name: "Chez Alice"}
	link := &models.PaymentLink{ProfileID: shop.ProfileID, Provider: models.PaymentProviderPayPal, AccountID: "MERCH-1", IsActive: true}
	paypal := &fakePayPalClient{orderID: "PAYPAL-ORDER-9", approveURL: "https://paypal.test/approve"}
	env := newCheckoutTestEnv(shop, link, &fakeStripeCheckout{}, paypal)

	w := postCheckout(env, checkoutBody(shop.ID, "paypal"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, paypal.createdReqs, 1)
	assert.Equal(t, "42.50", paypal.createdReqs[0].Amount)
	assert.Equal(t, "EUR", paypal.createdReqs[0].Currency)
	assert.Equal(t, "MERCH-1", paypal.createdReqs[0].MerchantID)
	assert.Len(t, env.pending.created, 1)
	assert.Equal(t, "PAYPAL-ORDER-9", env.pending.created[0].Reference)

	var resp controllers.CheckoutResponse
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAYPAL-ORDER-9", resp.Reference)
	assert.Equal(t, "https://paypal.test/approve", resp.CheckoutURL)
}

func TestCreateCheckout_UnknownShop(t *testing.T) {
	env := newCheckoutTestEnv(nil, nil, &fakeStripeCheckout{}, &fakePayPalClient{})

	w := postCheckout(env, checkoutBody(uuid.New(), "stripe"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, env.pending.created)
}

func TestCreateCheckout_NoActivePaymentLink(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New()}
	env := newCheckoutTestEnv(shop, nil, &fakeStripeCheckout{}, &fakePayPalClient{})

	w := postCheckout(env, checkoutBody(shop.ID, "stripe"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCheckout_InvalidAmount(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New()}
	env := newCheckoutTestEnv(shop, nil, &fakeStripeCheckout{}, &fakePayPalClient{})

	body := checkoutBody(shop.ID, "stripe")
	body["total_amount"] = "-5.00"
	w := postCheckout(env, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckout_UnknownProviderRejectedByBinding(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New()}
	env := newCheckoutTestEnv(shop, nil, &fakeStripeCheckout{}, &fakePayPalClient{})

	body := checkoutBody(shop.ID, "bitcoin")
	w := postCheckout(env, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckout_StripeFailureCleansUpPendingOrder(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), ProfileID: uuid.New()}
	link := &models.PaymentLink{ProfileID: shop.ProfileID, Provider: models.PaymentProviderStripe, AccountID: "acct_1", IsActive: true}
	stripeCheckout := &fakeStripeCheckout{err: context.DeadlineExceeded}
	env := newCheckoutTestEnv(shop, link, stripeCheckout, &fakePayPalClient{})

	w := postCheckout(env, checkoutBody(shop.ID, "stripe"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
