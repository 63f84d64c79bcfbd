package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// StripeVerifier verifies a raw webhook request against an endpoint secret.
// *services.StripeService satisfies it; tests sign their own payloads.
type StripeVerifier interface {
	VerifyRequest(r *http.Request, endpointSecret string) (stripe.Event, error)
}

// PayPalVerifier verifies a raw PayPal delivery through the provider API.
type PayPalVerifier interface {
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

// WebhookController owns the provider-facing endpoints. Each request is
// verified, claimed in the event ledger, then routed; handlers return a typed
// Outcome the controller translates into the HTTP status the provider keys
// its retry behaviour on.
type WebhookController struct {
	Stripe        StripeVerifier
	PayPal        PayPalVerifier
	StripeLedger  repository.EventLedger
	PayPalLedger  repository.EventLedger
	Reconciler    *services.OrderReconciler
	Subscriptions *services.SubscriptionService
	Accounts      *services.AccountService
	Logger        *zap.Logger

	GeneralSecret  string
	AccountsSecret string
	PaymentsSecret string
}

// stripeScope restricts which event types an endpoint dispatches; events
// outside the scope are acknowledged unhandled like unknown types.
type stripeScope int

const (
	scopeGeneral stripeScope = iota
	scopeAccounts
	scopePayments
)

func (s stripeScope) allows(eventType stripe.EventType) bool {
	switch s {
	case scopeAccounts:
		return eventType == "account.updated"
	case scopePayments:
		switch eventType {
		case "checkout.session.completed", "payment_intent.succeeded",
			"customer.subscription.created", "customer.subscription.updated",
			"customer.subscription.deleted",
			"invoice.payment_succeeded", "invoice.payment_failed":
			return true
		}
		return false
	default:
		return true
	}
}

// StripeWebhook is the general endpoint carrying every subscribed event type.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	wc.handleStripe(c, wc.GeneralSecret, scopeGeneral)
}

// StripeAccountsWebhook receives Connect account events under its own secret.
func (wc *WebhookController) StripeAccountsWebhook(c *gin.Context) {
	wc.handleStripe(c, wc.AccountsSecret, scopeAccounts)
}

// StripePaymentsWebhook receives payment and subscription events under its
// own secret, for split webhook configurations.
func (wc *WebhookController) StripePaymentsWebhook(c *gin.Context) {
	wc.handleStripe(c, wc.PaymentsSecret, scopePayments)
}

func (wc *WebhookController) handleStripe(c *gin.Context, secret string, scope stripeScope) {
	event, err := wc.Stripe.VerifyRequest(c.Request, secret)
	if err != nil {
		wc.Logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	wc.Logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	claimed, err := wc.StripeLedger.Claim(c.Request.Context(), event.ID, string(event.Type))
	if err != nil {
		wc.Logger.Error("Stripe event ledger claim failed",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event claim failed"})
		return
	}
	if !claimed {
		wc.Logger.Info("Skipping duplicate Stripe event",
			zap.String("event_id", event.ID),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	outcome := wc.dispatchStripe(c.Request.Context(), event, scope)
	wc.finishEvent(c, wc.StripeLedger, event.ID, string(event.Type), outcome)
}

func (wc *WebhookController) dispatchStripe(ctx context.Context, event stripe.Event, scope stripeScope) services.Outcome {
	if !scope.allows(event.Type) {
		wc.Logger.Info("Event type outside endpoint scope",
			zap.String("event_type", string(event.Type)),
		)
		return services.Success()
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return services.NonRetryable("unmarshal checkout session", err)
		}
		return wc.Reconciler.HandleCheckoutSessionCompleted(ctx, sess)

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return services.NonRetryable("unmarshal payment intent", err)
		}
		return wc.Reconciler.HandlePaymentIntentSucceeded(ctx, pi)

	case "customer.created":
		var customer stripe.Customer
		if err := json.Unmarshal(event.Data.Raw, &customer); err != nil {
			return services.NonRetryable("unmarshal customer", err)
		}
		return wc.Subscriptions.HandleCustomerCreated(ctx, customer)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return services.NonRetryable("unmarshal subscription", err)
		}
		return wc.Subscriptions.HandleSubscriptionChange(ctx, sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return services.NonRetryable("unmarshal subscription", err)
		}
		return wc.Subscriptions.HandleSubscriptionDeleted(ctx, sub)

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return services.NonRetryable("unmarshal invoice", err)
		}
		return wc.Subscriptions.HandleInvoicePaymentSucceeded(ctx, invoice)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return services.NonRetryable("unmarshal invoice", err)
		}
		return wc.Subscriptions.HandleInvoicePaymentFailed(ctx, invoice)

	case "account.updated":
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return services.NonRetryable("unmarshal account", err)
		}
		return wc.Accounts.HandleAccountUpdated(ctx, account)

	case "account.application.authorized":
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return services.NonRetryable("unmarshal account", err)
		}
		return wc.Accounts.HandleApplicationAuthorized(ctx, account)

	default:
		wc.Logger.Info("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)),
		)
		return services.Success()
	}
}

// PayPalWebhook verifies the delivery through PayPal's verification API, then
// claims and routes it like the Stripe endpoints.
func (wc *WebhookController) PayPalWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	// The resource is decoded as raw JSON first: its absence must be caught
	// here, the typed struct cannot tell a missing object from an empty one.
	var envelope struct {
		ID        string          `json:"id"`
		EventType string          `json:"event_type"`
		Resource  json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		wc.Logger.Warn("Malformed PayPal webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}
	if envelope.ID == "" || envelope.EventType == "" ||
		len(envelope.Resource) == 0 || string(envelope.Resource) == "null" {
		wc.Logger.Warn("PayPal webhook missing envelope fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete event envelope"})
		return
	}

	var event models.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		wc.Logger.Warn("Malformed PayPal webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if err := wc.PayPal.VerifyWebhookSignature(c.Request.Context(), c.Request.Header, body); err != nil {
		var verr *services.PayPalVerificationError
		if errors.As(err, &verr) {
			wc.Logger.Warn("PayPal webhook verification rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
			return
		}
		wc.Logger.Error("PayPal webhook verification call failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification unavailable"})
		return
	}

	wc.Logger.Info("Processing PayPal webhook",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.ID),
	)

	claimed, err := wc.PayPalLedger.Claim(c.Request.Context(), event.ID, event.EventType)
	if err != nil {
		wc.Logger.Error("PayPal event ledger claim failed",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event claim failed"})
		return
	}
	if !claimed {
		wc.Logger.Info("Skipping duplicate PayPal event",
			zap.String("event_id", event.ID),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var outcome services.Outcome
	switch event.EventType {
	case models.PayPalEventCaptureCompleted:
		outcome = wc.Reconciler.HandlePayPalCapture(c.Request.Context(), event)
	case models.PayPalEventMerchantOnboarded:
		outcome = wc.Accounts.HandleMerchantOnboarded(c.Request.Context(), event)
	default:
		wc.Logger.Info("Unhandled PayPal event type",
			zap.String("event_type", event.EventType),
		)
		outcome = services.Success()
	}

	wc.finishEvent(c, wc.PayPalLedger, event.ID, event.EventType, outcome)
}

// finishEvent closes out a dispatched event. A retryable outcome gives the
// ledger claim back first: the claim must not outlive a failed attempt, or
// the redelivery the 500 asks for would be acked as a duplicate and the event
// lost for good. Success, duplicate and non-retryable outcomes keep the row.
func (wc *WebhookController) finishEvent(c *gin.Context, ledger repository.EventLedger, eventID, eventType string, outcome services.Outcome) {
	if outcome.HTTPStatus() == http.StatusInternalServerError {
		if err := ledger.Release(c.Request.Context(), eventID); err != nil {
			wc.Logger.Error("Event claim release failed, redelivery will be skipped",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
	}
	wc.respond(c, eventID, eventType, outcome)
}

func (wc *WebhookController) respond(c *gin.Context, eventID, eventType string, outcome services.Outcome) {
	status := outcome.HTTPStatus()
	if status >= http.StatusBadRequest {
		wc.Logger.Error("Webhook handling failed",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.String("reason", outcome.Reason()),
			zap.Int("status", status),
			zap.Error(outcome.Err()),
		)
		c.JSON(status, gin.H{"error": outcome.Reason()})
		return
	}
	c.JSON(status, gin.H{"received": true})
}
