package services

import (
	"context"

	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// OrderReconciler turns payment-capture events into durable order state.
//
// Two idempotence layers protect it: the event ledger upstream, and a
// domain-level check on the provider capture/session id here. The second one
// is deliberate defense in depth: it catches events reprocessed after a
// partial failure, when the ledger row already exists but the order write
// never happened on the first attempt.
type OrderReconciler struct {
	orders   repository.OrderRepository
	pending  repository.PendingOrderRepository
	shops    repository.ShopRepository
	notifier *Notifier
	logger   *zap.Logger
}

func NewOrderReconciler(
	orders repository.OrderRepository,
	pending repository.PendingOrderRepository,
	shops repository.ShopRepository,
	notifier *Notifier,
	logger *zap.Logger,
) *OrderReconciler {
	return &OrderReconciler{
		orders:   orders,
		pending:  pending,
		shops:    shops,
		notifier: notifier,
		logger:   logger,
	}
}

// capture carries everything a provider capture event contributes to an
// order, normalized across Stripe and PayPal.
type capture struct {
	Reference       string
	PaidAmount      decimal.Decimal
	SessionID       *string
	PaymentIntentID *string
	PayPalOrderID   *string
	PayPalCaptureID *string
}

// HandleCheckoutSessionCompleted reconciles a Stripe hosted-checkout payment.
// The pending-order reference travels in session metadata; quote payments
// carry the existing order id instead.
func (r *OrderReconciler) HandleCheckoutSessionCompleted(ctx context.Context, sess stripe.CheckoutSession) Outcome {
	pay := capture{
		PaidAmount: AmountFromMinorUnits(sess.AmountTotal),
		SessionID:  &sess.ID,
	}
	if sess.PaymentIntent != nil {
		pay.PaymentIntentID = &sess.PaymentIntent.ID
	}

	existing, err := r.orders.FindByStripeSessionID(ctx, sess.ID)
	if err != nil {
		return Retryable("lookup order by session id", err)
	}
	if existing != nil {
		r.logger.Info("Checkout session already reconciled",
			zap.String("session_id", sess.ID),
			zap.String("order_id", existing.ID.String()),
		)
		return Duplicate("session already reconciled")
	}

	if rawOrderID := sess.Metadata["order_id"]; rawOrderID != "" {
		orderID, parseErr := uuid.Parse(rawOrderID)
		if parseErr != nil {
			return NonRetryable("invalid order_id in session metadata", parseErr)
		}
		return r.confirmExistingOrder(ctx, orderID, pay, nil)
	}

	pay.Reference = sess.Metadata["reference"]
	if pay.Reference == "" {
		r.logger.Warn("Checkout session carries no reference metadata",
			zap.String("session_id", sess.ID),
		)
		return NonRetryable("missing reference in session metadata", nil)
	}
	return r.reconcilePending(ctx, pay)
}

// HandlePaymentIntentSucceeded covers payments that bypass hosted checkout
// (quote payments via payment links). Intents without our order_id metadata
// belong to flows already reconciled through their checkout session and are
// acknowledged untouched.
func (r *OrderReconciler) HandlePaymentIntentSucceeded(ctx context.Context, pi stripe.PaymentIntent) Outcome {
	rawOrderID := pi.Metadata["order_id"]
	if rawOrderID == "" {
		r.logger.Info("Payment intent without order metadata, ignoring",
			zap.String("payment_intent_id", pi.ID),
		)
		return Success()
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return NonRetryable("invalid order_id in payment intent metadata", err)
	}

	existing, lookupErr := r.orders.FindByStripePaymentIntentID(ctx, pi.ID)
	if lookupErr != nil {
		return Retryable("lookup order by payment intent id", lookupErr)
	}
	if existing != nil {
		return Duplicate("payment intent already reconciled")
	}

	return r.confirmExistingOrder(ctx, orderID, capture{
		PaidAmount:      AmountFromMinorUnits(pi.AmountReceived),
		PaymentIntentID: &pi.ID,
	}, nil)
}

// HandlePayPalCapture reconciles a PAYMENT.CAPTURE.COMPLETED event. The
// PayPal order id doubles as the pending-order reference.
func (r *OrderReconciler) HandlePayPalCapture(ctx context.Context, event models.PayPalWebhookEvent) Outcome {
	captureID := event.Resource.ID
	paypalOrderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if paypalOrderID == "" {
		r.logger.Error("PayPal capture without related order id",
			zap.String("capture_id", captureID),
			zap.String("event_id", event.ID),
		)
		return NonRetryable("missing related order id in capture event", nil)
	}

	existing, err := r.orders.FindByPayPalCaptureID(ctx, captureID)
	if err != nil {
		return Retryable("lookup order by capture id", err)
	}
	if existing != nil {
		r.logger.Info("PayPal capture already reconciled",
			zap.String("capture_id", captureID),
			zap.String("order_id", existing.ID.String()),
		)
		return Duplicate("capture already reconciled")
	}

	paid, err := ParseProviderAmount(event.Resource.Amount.Value)
	if err != nil {
		return NonRetryable("unparseable capture amount", err)
	}

	return r.reconcilePending(ctx, capture{
		Reference:       paypalOrderID,
		PaidAmount:      paid,
		PayPalOrderID:   &paypalOrderID,
		PayPalCaptureID: &captureID,
	})
}

// reconcilePending resolves the pending order behind pay.Reference and either
// promotes it into a new confirmed Order or confirms the existing quoted one.
func (r *OrderReconciler) reconcilePending(ctx context.Context, pay capture) Outcome {
	pendingRow, err := r.pending.FindByReference(ctx, pay.Reference)
	if err != nil {
		return Retryable("lookup pending order", err)
	}
	if pendingRow == nil {
		// Money moved but nothing to attribute it to. Retry in case of a
		// read-after-write race; humans must follow up if retries exhaust.
		r.logger.Error("CRITICAL: payment captured but no pending order found",
			zap.String("reference", pay.Reference),
		)
		return Retryable("pending order not found for reference "+pay.Reference, nil)
	}

	payload, err := pendingRow.DecodePayload()
	if err != nil {
		r.logger.Error("CRITICAL: pending order payload is unreadable",
			zap.String("reference", pay.Reference),
			zap.Error(err),
		)
		return NonRetryable("corrupt pending order payload", err)
	}

	if payload.IsCustomOrder && payload.OrderID != nil {
		return r.confirmExistingOrder(ctx, *payload.OrderID, pay, pendingRow)
	}

	order := &models.Order{
		ShopID:                payload.ShopID,
		ProductID:             payload.ProductID,
		ProductName:           payload.ProductName,
		CustomerName:          payload.CustomerName,
		CustomerEmail:         payload.CustomerEmail,
		CustomerPhone:         payload.CustomerPhone,
		PickupDate:            payload.PickupDate,
		IsCustomOrder:         payload.IsCustomOrder,
		TotalAmount:           payload.TotalAmount,
		PaidAmount:            pay.PaidAmount,
		RemainingAmount:       payload.TotalAmount.Sub(pay.PaidAmount),
		Status:                models.StatusConfirmed,
		StripeSessionID:       pay.SessionID,
		StripePaymentIntentID: pay.PaymentIntentID,
		PayPalOrderID:         pay.PayPalOrderID,
		PayPalCaptureID:       pay.PayPalCaptureID,
	}
	if err := r.orders.Create(ctx, order); err != nil {
		return Retryable("create order", err)
	}

	// Pending row goes only after the order is durable: a crash in between
	// leaves a safe retry source, not a lost payment.
	if err := r.pending.Delete(ctx, pendingRow.ID); err != nil {
		r.logger.Error("Failed to delete consumed pending order",
			zap.String("reference", pay.Reference),
			zap.Error(err),
		)
	}

	r.logger.Info("Order confirmed from pending order",
		zap.String("order_id", order.ID.String()),
		zap.String("reference", pay.Reference),
		zap.String("paid_amount", order.PaidAmount.StringFixed(2)),
	)

	r.flushNotifications(ctx, order)
	return Success()
}

// confirmExistingOrder transitions a quoted/custom order to confirmed without
// ever inserting a second row.
func (r *OrderReconciler) confirmExistingOrder(ctx context.Context, orderID uuid.UUID, pay capture, pendingRow *models.PendingOrder) Outcome {
	order, err := r.orders.FindByID(ctx, orderID)
	if err != nil {
		return Retryable("lookup order", err)
	}
	if order == nil {
		r.logger.Error("CRITICAL: payment captured for unknown order",
			zap.String("order_id", orderID.String()),
			zap.String("reference", pay.Reference),
		)
		return Retryable("order not found for id "+orderID.String(), nil)
	}
	if order.Status == models.StatusConfirmed || order.Status == models.StatusReady || order.Status == models.StatusCompleted {
		return Duplicate("order already confirmed")
	}

	updates := map[string]interface{}{
		"status":           models.StatusConfirmed,
		"paid_amount":      pay.PaidAmount,
		"remaining_amount": order.TotalAmount.Sub(pay.PaidAmount),
	}
	if pay.SessionID != nil {
		updates["stripe_session_id"] = *pay.SessionID
	}
	if pay.PaymentIntentID != nil {
		updates["stripe_payment_intent_id"] = *pay.PaymentIntentID
	}
	if pay.PayPalOrderID != nil {
		updates["paypal_order_id"] = *pay.PayPalOrderID
	}
	if pay.PayPalCaptureID != nil {
		updates["paypal_capture_id"] = *pay.PayPalCaptureID
	}
	if err := r.orders.Update(ctx, order.ID, updates); err != nil {
		return Retryable("confirm order", err)
	}

	if pendingRow != nil {
		if err := r.pending.Delete(ctx, pendingRow.ID); err != nil {
			r.logger.Error("Failed to delete consumed pending order",
				zap.String("reference", pay.Reference),
				zap.Error(err),
			)
		}
	}

	order.Status = models.StatusConfirmed
	order.PaidAmount = pay.PaidAmount
	order.RemainingAmount = order.TotalAmount.Sub(pay.PaidAmount)

	r.logger.Info("Quoted order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("paid_amount", order.PaidAmount.StringFixed(2)),
	)

	r.flushNotifications(ctx, order)
	return Success()
}

// flushNotifications runs after the domain mutation is durable. Failures are
// logged and swallowed: the payment and order are already recorded, and
// failing the webhook here would risk duplicate orders on provider retry.
func (r *OrderReconciler) flushNotifications(ctx context.Context, order *models.Order) {
	shop, err := r.shops.FindByID(ctx, order.ShopID)
	if err != nil || shop == nil {
		r.logger.Warn("Shop lookup failed, skipping order notifications",
			zap.String("shop_id", order.ShopID.String()),
			zap.Error(err),
		)
		return
	}

	pickup := ""
	if order.PickupDate != nil {
		pickup = order.PickupDate.Format("2006-01-02")
	}
	params := OrderEmailParams{
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShopName:        shop.Name,
		ShopOwnerEmail:  shop.OwnerEmail,
		ProductName:     order.ProductName,
		TotalAmount:     order.TotalAmount,
		PaidAmount:      order.PaidAmount,
		RemainingAmount: order.RemainingAmount,
		PickupDate:      pickup,
	}

	if _, err := r.notifier.OrderConfirmation(ctx, params); err != nil {
		r.logger.Error("Order confirmation email failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
	if shop.OwnerEmail == "" {
		return
	}
	if _, err := r.notifier.OrderNotification(ctx, params); err != nil {
		r.logger.Error("Shop owner notification email failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
