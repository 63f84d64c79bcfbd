package services

import (
	"context"

	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// AccountService reconciles connected-account readiness into the payment
// methods the storefront exposes: a ready account gets an active payment
// link, an account that loses readiness gets its link deactivated (the row
// stays for history).
type AccountService struct {
	stripeAccounts repository.StripeConnectAccountRepository
	paypalAccounts repository.PayPalAccountRepository
	paymentLinks   repository.PaymentLinkRepository
	logger         *zap.Logger
}

func NewAccountService(
	stripeAccounts repository.StripeConnectAccountRepository,
	paypalAccounts repository.PayPalAccountRepository,
	paymentLinks repository.PaymentLinkRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		stripeAccounts: stripeAccounts,
		paypalAccounts: paypalAccounts,
		paymentLinks:   paymentLinks,
		logger:         logger,
	}
}

// HandleAccountUpdated processes Connect account.updated events. The profile
// id travels in the account metadata on first update; later events may omit
// it, in which case the existing row supplies it.
func (s *AccountService) HandleAccountUpdated(ctx context.Context, account stripe.Account) Outcome {
	profileID, found, outcome := s.resolveStripeProfile(ctx, account)
	if !outcome.IsSuccess() {
		return outcome
	}
	if !found {
		// No metadata and no prior row: not one of ours, and a retry cannot
		// supply the missing mapping. Acknowledge and move on.
		s.logger.Warn("account.updated for unmapped account, ignoring",
			zap.String("account_id", account.ID),
		)
		return Success()
	}

	isActive := account.ChargesEnabled && account.PayoutsEnabled
	record := &models.StripeConnectAccount{
		ProfileID:        profileID,
		AccountID:        account.ID,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
		IsActive:         isActive,
	}
	if err := s.stripeAccounts.Upsert(ctx, record); err != nil {
		return Retryable("upsert stripe connect account", err)
	}

	if isActive {
		if err := s.paymentLinks.UpsertActive(ctx, profileID, models.PaymentProviderStripe, account.ID); err != nil {
			return Retryable("activate stripe payment link", err)
		}
	} else {
		if err := s.paymentLinks.Deactivate(ctx, profileID, models.PaymentProviderStripe); err != nil {
			return Retryable("deactivate stripe payment link", err)
		}
	}

	s.logger.Info("Connect account readiness reconciled",
		zap.String("account_id", account.ID),
		zap.String("profile_id", profileID.String()),
		zap.Bool("is_active", isActive),
	)
	return Success()
}

// HandleApplicationAuthorized only acknowledges: readiness is driven by the
// account.updated events that follow.
func (s *AccountService) HandleApplicationAuthorized(ctx context.Context, account stripe.Account) Outcome {
	s.logger.Info("Connect application authorized",
		zap.String("account_id", account.ID),
	)
	return Success()
}

// HandleMerchantOnboarded processes PayPal MERCHANT.ONBOARDING.COMPLETED.
// The tracking id is the profile id we seeded into the onboarding link.
func (s *AccountService) HandleMerchantOnboarded(ctx context.Context, event models.PayPalWebhookEvent) Outcome {
	res := event.Resource
	if res.MerchantID == "" {
		return NonRetryable("onboarding event without merchant id", nil)
	}
	profileID, err := uuid.Parse(res.TrackingID)
	if err != nil {
		return NonRetryable("invalid tracking id in onboarding event", err)
	}

	isActive := res.PermissionsGranted
	record := &models.PayPalAccount{
		ProfileID:          profileID,
		MerchantID:         res.MerchantID,
		PermissionsGranted: res.PermissionsGranted,
		EmailConfirmed:     res.PrimaryEmailConfirmed,
		IsActive:           isActive,
	}
	if err := s.paypalAccounts.Upsert(ctx, record); err != nil {
		return Retryable("upsert paypal account", err)
	}

	if isActive {
		if err := s.paymentLinks.UpsertActive(ctx, profileID, models.PaymentProviderPayPal, res.MerchantID); err != nil {
			return Retryable("activate paypal payment link", err)
		}
	} else {
		if err := s.paymentLinks.Deactivate(ctx, profileID, models.PaymentProviderPayPal); err != nil {
			return Retryable("deactivate paypal payment link", err)
		}
	}

	s.logger.Info("PayPal merchant onboarding reconciled",
		zap.String("merchant_id", res.MerchantID),
		zap.String("profile_id", profileID.String()),
		zap.Bool("is_active", isActive),
	)
	return Success()
}

func (s *AccountService) resolveStripeProfile(ctx context.Context, account stripe.Account) (uuid.UUID, bool, Outcome) {
	if raw := account.Metadata["profile_id"]; raw != "" {
		profileID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false, NonRetryable("invalid profile_id in account metadata", err)
		}
		return profileID, true, Success()
	}

	existing, err := s.stripeAccounts.FindByAccountID(ctx, account.ID)
	if err != nil {
		return uuid.Nil, false, Retryable("lookup connect account", err)
	}
	if existing == nil {
		return uuid.Nil, false, Success()
	}
	return existing.ProfileID, true, Success()
}
