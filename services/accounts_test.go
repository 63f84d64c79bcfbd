package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// ---- mock connect account repositories ----

type mockStripeAccountRepo struct {
	existing  *models.StripeConnectAccount
	findErr   error
	upserted  *models.StripeConnectAccount
	upsertErr error
}

func (m *mockStripeAccountRepo) FindByAccountID(_ context.Context, _ string) (*models.StripeConnectAccount, error) {
	return m.existing, m.findErr
}
func (m *mockStripeAccountRepo) Upsert(_ context.Context, account *models.StripeConnectAccount) error {
	m.upserted = account
	return m.upsertErr
}

type mockPayPalAccountRepo struct {
	upserted  *models.PayPalAccount
	upsertErr error
}

func (m *mockPayPalAccountRepo) Upsert(_ context.Context, account *models.PayPalAccount) error {
	m.upserted = account
	return m.upsertErr
}

// ---- mock payment link repository ----

type linkChange struct {
	provider string
	active   bool
}

type mockPaymentLinkRepo struct {
	changes       []linkChange
	activeLink    *models.PaymentLink
	upsertErr     error
	deactivateErr error
}

func (m *mockPaymentLinkRepo) UpsertActive(_ context.Context, _ uuid.UUID, provider, _ string) error {
	m.changes = append(m.changes, linkChange{provider: provider, active: true})
	return m.upsertErr
}
func (m *mockPaymentLinkRepo) Deactivate(_ context.Context, _ uuid.UUID, provider string) error {
	m.changes = append(m.changes, linkChange{provider: provider, active: false})
	return m.deactivateErr
}
func (m *mockPaymentLinkRepo) FindActive(_ context.Context, _ uuid.UUID, _ string) (*models.PaymentLink, error) {
	return m.activeLink, nil
}

// ---- helpers ----

func newTestAccountService(stripeAccounts *mockStripeAccountRepo, paypalAccounts *mockPayPalAccountRepo, links *mockPaymentLinkRepo) *services.AccountService {
	logger, _ := zap.NewDevelopment()
	return services.NewAccountService(stripeAccounts, paypalAccounts, links, logger)
}

func onboardingEvent(merchantID, trackingID string, granted, emailConfirmed bool) models.PayPalWebhookEvent {
	var event models.PayPalWebhookEvent
	raw := map[string]interface{}{
		"id":         "WH-2",
		"event_type": "MERCHANT.ONBOARDING.COMPLETED",
		"resource": map[string]interface{}{
			"merchant_id":             merchantID,
			"tracking_id":             trackingID,
			"permissions_granted":     granted,
			"primary_email_confirmed": emailConfirmed,
		},
	}
	b, _ := json.Marshal(raw)
	_ = json.Unmarshal(b, &event)
	return event
}

// ---- tests ----

func TestHandleAccountUpdated_ReadyAccountActivatesLink(t *testing.T) {
	profileID := uuid.New()
	accounts := &mockStripeAccountRepo{}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(accounts, &mockPayPalAccountRepo{}, links)

	outcome := svc.HandleAccountUpdated(context.Background(), stripe.Account{
		ID:               "acct_1",
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
		Metadata:         map[string]string{"profile_id": profileID.String()},
	})

	assert.True(t, outcome.IsSuccess())
	assert.True(t, accounts.upserted.IsActive)
	assert.Equal(t, []linkChange{{provider: models.PaymentProviderStripe, active: true}}, links.changes)
}

func TestHandleAccountUpdated_PartialReadinessDeactivatesLink(t *testing.T) {
	profileID := uuid.New()
	accounts := &mockStripeAccountRepo{}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(accounts, &mockPayPalAccountRepo{}, links)

	// Charges on but payouts still pending: not ready.
	outcome := svc.HandleAccountUpdated(context.Background(), stripe.Account{
		ID:             "acct_1",
		ChargesEnabled: true,
		PayoutsEnabled: false,
		Metadata:       map[string]string{"profile_id": profileID.String()},
	})

	assert.True(t, outcome.IsSuccess())
	assert.False(t, accounts.upserted.IsActive)
	assert.Equal(t, []linkChange{{provider: models.PaymentProviderStripe, active: false}}, links.changes)
}

func TestHandleAccountUpdated_NoMetadataFallsBackToExistingRow(t *testing.T) {
	profileID := uuid.New()
	accounts := &mockStripeAccountRepo{existing: &models.StripeConnectAccount{
		ProfileID: profileID,
		AccountID: "acct_1",
	}}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(accounts, &mockPayPalAccountRepo{}, links)

	outcome := svc.HandleAccountUpdated(context.Background(), stripe.Account{
		ID:             "acct_1",
		ChargesEnabled: true,
		PayoutsEnabled: true,
	})

	assert.True(t, outcome.IsSuccess())
	assert.Equal(t, profileID, accounts.upserted.ProfileID)
}

func TestHandleAccountUpdated_UnmappedAccountIsAcknowledged(t *testing.T) {
	accounts := &mockStripeAccountRepo{}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(accounts, &mockPayPalAccountRepo{}, links)

	outcome := svc.HandleAccountUpdated(context.Background(), stripe.Account{ID: "acct_ghost"})

	// Acknowledged as a plain success, not recorded as an already-seen event.
	assert.True(t, outcome.IsSuccess())
	assert.False(t, outcome.IsDuplicate())
	assert.Nil(t, accounts.upserted)
	assert.Empty(t, links.changes)
}

func TestHandleMerchantOnboarded_GrantedPermissionsActivateLink(t *testing.T) {
	profileID := uuid.New()
	paypalAccounts := &mockPayPalAccountRepo{}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(&mockStripeAccountRepo{}, paypalAccounts, links)

	outcome := svc.HandleMerchantOnboarded(context.Background(),
		onboardingEvent("MERCH-1", profileID.String(), true, true))

	assert.True(t, outcome.IsSuccess())
	assert.True(t, paypalAccounts.upserted.IsActive)
	assert.Equal(t, "MERCH-1", paypalAccounts.upserted.MerchantID)
	assert.Equal(t, []linkChange{{provider: models.PaymentProviderPayPal, active: true}}, links.changes)
}

func TestHandleMerchantOnboarded_WithoutPermissionsDeactivates(t *testing.T) {
	profileID := uuid.New()
	paypalAccounts := &mockPayPalAccountRepo{}
	links := &mockPaymentLinkRepo{}
	svc := newTestAccountService(&mockStripeAccountRepo{}, paypalAccounts, links)

	outcome := svc.HandleMerchantOnboarded(context.Background(),
		onboardingEvent("MERCH-1", profileID.String(), false, true))

	assert.True(t, outcome.IsSuccess())
	assert.False(t, paypalAccounts.upserted.IsActive)
	assert.Equal(t, []linkChange{{provider: models.PaymentProviderPayPal, active: false}}, links.changes)
}

func TestHandleMerchantOnboarded_BadTrackingIDIsNonRetryable(t *testing.T) {
	svc := newTestAccountService(&mockStripeAccountRepo{}, &mockPayPalAccountRepo{}, &mockPaymentLinkRepo{})

	outcome := svc.HandleMerchantOnboarded(context.Background(),
		onboardingEvent("MERCH-1", "not-a-uuid", true, true))

	assert.Equal(t, 400, outcome.HTTPStatus())
}
