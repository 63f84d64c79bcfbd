package services

import (
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeService wraps the Stripe SDK behind an injected client so handlers
// and tests never touch package-level SDK state.
type StripeService struct {
	client *client.API
}

func NewStripeService(secretKey string) *StripeService {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeService{client: sc}
}

// VerifyRequest reconstructs the event from the raw body and the
// Stripe-Signature header using the given endpoint secret. Any mismatch,
// missing header or stale timestamp fails verification.
func (s *StripeService) VerifyRequest(r *http.Request, endpointSecret string) (stripe.Event, error) {
	var event stripe.Event
	if endpointSecret == "" {
		return event, fmt.Errorf("stripe webhook secret not configured")
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, fmt.Errorf("read webhook body: %w", err)
	}
	return webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}

type CheckoutSessionRequest struct {
	AmountMinor        int64
	Currency           string
	ProductName        string
	Reference          string
	SuccessURL         string
	CancelURL          string
	ConnectedAccountID string
}

// CreateCheckoutSession creates a hosted checkout session on the tenant's
// connected account, carrying the pending-order reference in metadata so the
// webhook can correlate the capture back to it.
func (s *StripeService) CreateCheckoutSession(req CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.AddMetadata("reference", req.Reference)
	if req.ConnectedAccountID != "" {
		params.SetStripeAccount(req.ConnectedAccountID)
	}

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}
