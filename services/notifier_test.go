package services_test

import (
	"context"
	"testing"

	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_RoutesTemplatesAndRecipients(t *testing.T) {
	emails := &mockSender{}
	n := services.NewNotifier(emails)
	ctx := context.Background()

	orderParams := services.OrderEmailParams{
		CustomerEmail:  "alice@example.com",
		ShopOwnerEmail: "owner@example.com",
		TotalAmount:    mustAmount("85.00"),
		PaidAmount:     mustAmount("42.50"),
	}
	quoteParams := services.QuoteEmailParams{
		CustomerEmail: "alice@example.com",
		Amount:        mustAmount("120.00"),
	}
	billingParams := services.BillingEmailParams{OwnerEmail: "owner@example.com"}

	_, _ = n.OrderConfirmation(ctx, orderParams)
	_, _ = n.OrderNotification(ctx, orderParams)
	_, _ = n.QuoteSent(ctx, quoteParams)
	_, _ = n.QuoteRejected(ctx, quoteParams)
	_, _ = n.RequestRejected(ctx, quoteParams)
	_, _ = n.OrderCancelled(ctx, orderParams)
	_, _ = n.PaymentFailed(ctx, billingParams)
	_, _ = n.TrialEnding(ctx, billingParams)

	assert.Equal(t, []sentEmail{
		{template: "order-confirmation", to: "alice@example.com"},
		{template: "order-notification", to: "owner@example.com"},
		{template: "quote-sent", to: "alice@example.com"},
		{template: "quote-rejected", to: "alice@example.com"},
		{template: "request-rejected", to: "alice@example.com"},
		{template: "order-cancelled", to: "alice@example.com"},
		{template: "payment-failed", to: "owner@example.com"},
		{template: "trial-ending", to: "owner@example.com"},
	}, emails.sent)
}
