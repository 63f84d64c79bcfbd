package services

import (
	"context"
	"errors"

	"github.com/boubamga9/Pattyly-sub000/cache"
	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubscriptionService reconciles billing-provider subscription state into the
// local plan record and the shop's custom-orders capability. Every write is
// an upsert keyed by a natural key, so re-delivered and reordered events
// converge to the same final state.
type SubscriptionService struct {
	userProducts repository.UserProductRepository
	shops        repository.ShopRepository
	storefront   cache.StorefrontCache
	notifier     *Notifier
	logger       *zap.Logger

	premiumProductID string
}

func NewSubscriptionService(
	userProducts repository.UserProductRepository,
	shops repository.ShopRepository,
	storefront cache.StorefrontCache,
	notifier *Notifier,
	logger *zap.Logger,
	premiumProductID string,
) *SubscriptionService {
	return &SubscriptionService{
		userProducts:     userProducts,
		shops:            shops,
		storefront:       storefront,
		notifier:         notifier,
		logger:           logger,
		premiumProductID: premiumProductID,
	}
}

// HandleCustomerCreated maps the new Stripe customer onto the tenant profile
// carried in the customer's metadata.
func (s *SubscriptionService) HandleCustomerCreated(ctx context.Context, customer stripe.Customer) Outcome {
	rawProfileID := customer.Metadata["profile_id"]
	if rawProfileID == "" {
		s.logger.Warn("Stripe customer without profile metadata, ignoring",
			zap.String("customer_id", customer.ID),
		)
		return Success()
	}
	profileID, err := uuid.Parse(rawProfileID)
	if err != nil {
		return NonRetryable("invalid profile_id in customer metadata", err)
	}
	if err := s.userProducts.UpsertCustomer(ctx, profileID, customer.ID); err != nil {
		return Retryable("upsert customer mapping", err)
	}
	s.logger.Info("Stripe customer mapped to profile",
		zap.String("customer_id", customer.ID),
		zap.String("profile_id", profileID.String()),
	)
	return Success()
}

// HandleSubscriptionChange covers created and updated events.
func (s *SubscriptionService) HandleSubscriptionChange(ctx context.Context, sub stripe.Subscription) Outcome {
	status := models.SubscriptionInactive
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		status = models.SubscriptionActive
	}
	return s.applySubscription(ctx, sub, status)
}

// HandleSubscriptionDeleted forces the plan inactive.
func (s *SubscriptionService) HandleSubscriptionDeleted(ctx context.Context, sub stripe.Subscription) Outcome {
	return s.applySubscription(ctx, sub, models.SubscriptionInactive)
}

func (s *SubscriptionService) applySubscription(ctx context.Context, sub stripe.Subscription, status string) Outcome {
	if sub.Customer == nil {
		return NonRetryable("subscription without customer", nil)
	}
	// Sparse payloads (deletion events in particular) may omit items.
	productID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 &&
		sub.Items.Data[0].Price != nil && sub.Items.Data[0].Price.Product != nil {
		productID = sub.Items.Data[0].Price.Product.ID
	}

	up, err := s.userProducts.SetSubscription(ctx, sub.Customer.ID, sub.ID, productID, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// customer.created may still be in flight; the provider retry will
		// land after the mapping exists.
		s.logger.Warn("Subscription event for unknown customer, requesting retry",
			zap.String("customer_id", sub.Customer.ID),
			zap.String("subscription_id", sub.ID),
		)
		return Retryable("unknown stripe customer "+sub.Customer.ID, err)
	}
	if err != nil {
		return Retryable("update subscription state", err)
	}

	s.logger.Info("Subscription state reconciled",
		zap.String("profile_id", up.ProfileID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", status),
	)
	return s.applyCapability(ctx, up)
}

// HandleInvoicePaymentSucceeded re-activates the plan on a successful renewal.
func (s *SubscriptionService) HandleInvoicePaymentSucceeded(ctx context.Context, invoice stripe.Invoice) Outcome {
	if invoice.Customer == nil {
		return NonRetryable("invoice without customer", nil)
	}
	up, err := s.userProducts.SetStatusByCustomerID(ctx, invoice.Customer.ID, models.SubscriptionActive)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Retryable("unknown stripe customer "+invoice.Customer.ID, err)
	}
	if err != nil {
		return Retryable("activate subscription", err)
	}
	return s.applyCapability(ctx, up)
}

// HandleInvoicePaymentFailed deactivates the plan and warns the owner.
func (s *SubscriptionService) HandleInvoicePaymentFailed(ctx context.Context, invoice stripe.Invoice) Outcome {
	if invoice.Customer == nil {
		return NonRetryable("invoice without customer", nil)
	}
	up, err := s.userProducts.SetStatusByCustomerID(ctx, invoice.Customer.ID, models.SubscriptionInactive)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Retryable("unknown stripe customer "+invoice.Customer.ID, err)
	}
	if err != nil {
		return Retryable("deactivate subscription", err)
	}

	outcome := s.applyCapability(ctx, up)
	if !outcome.IsSuccess() {
		return outcome
	}

	if shop, shopErr := s.shops.FindByProfileID(ctx, up.ProfileID); shopErr == nil && shop != nil && shop.OwnerEmail != "" {
		if _, sendErr := s.notifier.PaymentFailed(ctx, BillingEmailParams{
			OwnerEmail: shop.OwnerEmail,
			ShopName:   shop.Name,
		}); sendErr != nil {
			s.logger.Error("Payment failed email not sent",
				zap.String("profile_id", up.ProfileID.String()),
				zap.Error(sendErr),
			)
		}
	}
	return Success()
}

// applyCapability derives the shop's custom-orders flag from plan state.
// Only an active premium plan enables it; an inactive plan or the starter
// tier forces it off regardless of prior value.
func (s *SubscriptionService) applyCapability(ctx context.Context, up *models.UserProduct) Outcome {
	accepted := up.SubscriptionStatus == models.SubscriptionActive &&
		up.ProductID == s.premiumProductID

	if err := s.shops.SetCustomAccepted(ctx, up.ProfileID, accepted); err != nil {
		return Retryable("update shop capability", err)
	}

	if shop, err := s.shops.FindByProfileID(ctx, up.ProfileID); err == nil && shop != nil {
		if err := s.storefront.Invalidate(ctx, shop.Slug); err != nil {
			s.logger.Warn("Storefront cache invalidation failed",
				zap.String("shop_slug", shop.Slug),
				zap.Error(err),
			)
		}
	}
	return Success()
}
