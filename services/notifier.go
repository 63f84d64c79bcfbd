package services

import (
	"context"

	"github.com/boubamga9/Pattyly-sub000/sender"

	"github.com/shopspring/decimal"
)

// Template names as configured at the email provider.
const (
	tplOrderConfirmation = "order-confirmation"
	tplOrderNotification = "order-notification"
	tplQuoteSent         = "quote-sent"
	tplQuoteRejected     = "quote-rejected"
	tplRequestRejected   = "request-rejected"
	tplOrderCancelled    = "order-cancelled"
	tplPaymentFailed     = "payment-failed"
	tplTrialEnding       = "trial-ending"
)

// Notifier is the typed face of the email provider: one method per
// notification kind, each building its own template params. It propagates
// send errors; the caller decides whether they are fatal (they never are in
// webhook handlers).
type Notifier struct {
	sender sender.TemplateSender
}

func NewNotifier(s sender.TemplateSender) *Notifier {
	return &Notifier{sender: s}
}

type OrderEmailParams struct {
	CustomerName    string
	CustomerEmail   string
	ShopName        string
	ShopOwnerEmail  string
	ProductName     string
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	PickupDate      string
}

// OrderConfirmation goes to the customer once their payment is captured.
func (n *Notifier) OrderConfirmation(ctx context.Context, p OrderEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplOrderConfirmation, p.CustomerEmail, map[string]interface{}{
		"customer_name":    p.CustomerName,
		"shop_name":        p.ShopName,
		"product_name":     p.ProductName,
		"total_amount":     p.TotalAmount.StringFixed(2),
		"paid_amount":      p.PaidAmount.StringFixed(2),
		"remaining_amount": p.RemainingAmount.StringFixed(2),
		"pickup_date":      p.PickupDate,
	})
}

// OrderNotification goes to the shop owner for the same capture.
func (n *Notifier) OrderNotification(ctx context.Context, p OrderEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplOrderNotification, p.ShopOwnerEmail, map[string]interface{}{
		"customer_name":  p.CustomerName,
		"customer_email": p.CustomerEmail,
		"product_name":   p.ProductName,
		"total_amount":   p.TotalAmount.StringFixed(2),
		"paid_amount":    p.PaidAmount.StringFixed(2),
		"pickup_date":    p.PickupDate,
	})
}

type QuoteEmailParams struct {
	CustomerName  string
	CustomerEmail string
	ShopName      string
	Amount        decimal.Decimal
	Message       string
}

func (n *Notifier) QuoteSent(ctx context.Context, p QuoteEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplQuoteSent, p.CustomerEmail, map[string]interface{}{
		"customer_name": p.CustomerName,
		"shop_name":     p.ShopName,
		"amount":        p.Amount.StringFixed(2),
		"message":       p.Message,
	})
}

func (n *Notifier) QuoteRejected(ctx context.Context, p QuoteEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplQuoteRejected, p.CustomerEmail, map[string]interface{}{
		"customer_name": p.CustomerName,
		"shop_name":     p.ShopName,
		"message":       p.Message,
	})
}

func (n *Notifier) RequestRejected(ctx context.Context, p QuoteEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplRequestRejected, p.CustomerEmail, map[string]interface{}{
		"customer_name": p.CustomerName,
		"shop_name":     p.ShopName,
		"message":       p.Message,
	})
}

func (n *Notifier) OrderCancelled(ctx context.Context, p OrderEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplOrderCancelled, p.CustomerEmail, map[string]interface{}{
		"customer_name": p.CustomerName,
		"shop_name":     p.ShopName,
		"product_name":  p.ProductName,
	})
}

type BillingEmailParams struct {
	OwnerEmail string
	ShopName   string
	DaysLeft   int
}

// PaymentFailed warns a shop owner their subscription invoice failed.
func (n *Notifier) PaymentFailed(ctx context.Context, p BillingEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplPaymentFailed, p.OwnerEmail, map[string]interface{}{
		"shop_name": p.ShopName,
	})
}

func (n *Notifier) TrialEnding(ctx context.Context, p BillingEmailParams) (sender.SendResult, error) {
	return n.sender.Send(ctx, tplTrialEnding, p.OwnerEmail, map[string]interface{}{
		"shop_name": p.ShopName,
		"days_left": p.DaysLeft,
	})
}
