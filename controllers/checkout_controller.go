package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/boubamga9/Pattyly-sub000/config"
	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// CheckoutSessionCreator is the slice of the Stripe service checkout needs.
type CheckoutSessionCreator interface {
	CreateCheckoutSession(req services.CheckoutSessionRequest) (*stripe.CheckoutSession, error)
}

// CheckoutController opens a payment round-trip: it snapshots the order into a
// pending row, creates the provider session and hands the redirect URL back to
// the storefront. The webhook closes the loop.
type CheckoutController struct {
	Shops        repository.ShopRepository
	PaymentLinks repository.PaymentLinkRepository
	Pending      repository.PendingOrderRepository
	Stripe       CheckoutSessionCreator
	PayPal       services.PayPalClient
	Config       *config.Config
	Logger       *zap.Logger
}

type CheckoutRequest struct {
	ShopID            uuid.UUID  `json:"shop_id" binding:"required"`
	ProductID         *uuid.UUID `json:"product_id"`
	ProductName       string     `json:"product_name" binding:"required"`
	CustomerName      string     `json:"customer_name" binding:"required"`
	CustomerEmail     string     `json:"customer_email" binding:"required,email"`
	CustomerPhone     string     `json:"customer_phone"`
	PickupDate        *time.Time `json:"pickup_date"`
	TotalAmount       string     `json:"total_amount" binding:"required"`
	DepositPercentage *int       `json:"deposit_percentage"`
	IsCustomOrder     bool       `json:"is_custom_order"`
	OrderID           *uuid.UUID `json:"order_id"`
	Provider          string     `json:"provider" binding:"required,oneof=stripe paypal"`
	Currency          string     `json:"currency"`
}

type CheckoutResponse struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
	PaidAmount  string `json:"paid_amount"`
	TotalAmount string `json:"total_amount"`
}

// CreateCheckout handles POST /checkout.
func (cc *CheckoutController) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil || total.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid total_amount"})
		return
	}
	if req.DepositPercentage != nil && (*req.DepositPercentage < 1 || *req.DepositPercentage > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deposit_percentage must be between 1 and 100"})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}

	ctx := c.Request.Context()
	shop, err := cc.Shops.FindByID(ctx, req.ShopID)
	if err != nil {
		cc.Logger.Error("Shop lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shop lookup failed"})
		return
	}
	if shop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
		return
	}

	link, err := cc.PaymentLinks.FindActive(ctx, shop.ProfileID, req.Provider)
	if err != nil {
		cc.Logger.Error("Payment link lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment link lookup failed"})
		return
	}
	if link == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "shop has no active " + req.Provider + " account"})
		return
	}

	paid, _ := services.SplitDeposit(total, req.DepositPercentage)

	payload := models.PendingOrderPayload{
		ShopID:            req.ShopID,
		ProductID:         req.ProductID,
		ProductName:       req.ProductName,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		PickupDate:        req.PickupDate,
		TotalAmount:       total,
		DepositPercentage: req.DepositPercentage,
		IsCustomOrder:     req.IsCustomOrder,
		OrderID:           req.OrderID,
	}

	switch req.Provider {
	case models.PaymentProviderPayPal:
		cc.checkoutPayPal(c, payload, paid, currency, link.AccountID)
	default:
		cc.checkoutStripe(c, payload, paid, currency, link.AccountID)
	}
}

// checkoutStripe mints the reference first: the pending row must exist before
// the customer can finish paying, or the capture webhook has nothing to match.
func (cc *CheckoutController) checkoutStripe(c *gin.Context, payload models.PendingOrderPayload, paid decimal.Decimal, currency, accountID string) {
	ctx := c.Request.Context()
	reference := uuid.NewString()

	if !cc.storePending(c, reference, payload) {
		return
	}

	sess, err := cc.Stripe.CreateCheckoutSession(services.CheckoutSessionRequest{
		AmountMinor:        paid.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:           currency,
		ProductName:        payload.ProductName,
		Reference:          reference,
		SuccessURL:         cc.Config.AppBaseURL + "/checkout/success",
		CancelURL:          cc.Config.AppBaseURL + "/checkout/cancel",
		ConnectedAccountID: accountID,
	})
	if err != nil {
		cc.Logger.Error("Stripe checkout session creation failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		if delErr := cc.Pending.DeleteByReference(ctx, reference); delErr != nil {
			cc.Logger.Warn("Orphan pending order left behind",
				zap.String("reference", reference),
				zap.Error(delErr),
			)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}

	cc.Logger.Info("Stripe checkout opened",
		zap.String("reference", reference),
		zap.String("session_id", sess.ID),
	)
	c.JSON(http.StatusCreated, CheckoutResponse{
		Reference:   reference,
		CheckoutURL: sess.URL,
		PaidAmount:  paid.StringFixed(2),
		TotalAmount: payload.TotalAmount.StringFixed(2),
	})
}

// checkoutPayPal creates the provider order first because its id doubles as
// the pending-order reference.
func (cc *CheckoutController) checkoutPayPal(c *gin.Context, payload models.PendingOrderPayload, paid decimal.Decimal, currency, merchantID string) {
	ctx := c.Request.Context()

	orderID, approveURL, err := cc.PayPal.CreateOrder(ctx, services.PayPalOrderRequest{
		Amount:     paid.StringFixed(2),
		Currency:   currencyCode(currency),
		MerchantID: merchantID,
		ReturnURL:  cc.Config.AppBaseURL + "/checkout/success",
		CancelURL:  cc.Config.AppBaseURL + "/checkout/cancel",
	})
	if err != nil {
		cc.Logger.Error("PayPal order creation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}

	if !cc.storePending(c, orderID, payload) {
		return
	}

	cc.Logger.Info("PayPal checkout opened",
		zap.String("reference", orderID),
	)
	c.JSON(http.StatusCreated, CheckoutResponse{
		Reference:   orderID,
		CheckoutURL: approveURL,
		PaidAmount:  paid.StringFixed(2),
		TotalAmount: payload.TotalAmount.StringFixed(2),
	})
}

func (cc *CheckoutController) storePending(c *gin.Context, reference string, payload models.PendingOrderPayload) bool {
	encoded, err := payload.Encode()
	if err != nil {
		cc.Logger.Error("Pending order payload encoding failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return false
	}
	if err := cc.Pending.Create(c.Request.Context(), &models.PendingOrder{
		Reference: reference,
		Payload:   encoded,
	}); err != nil {
		cc.Logger.Error("Pending order creation failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return false
	}
	return true
}

// PayPal wants upper-case ISO currency codes where Stripe takes lower-case.
func currencyCode(currency string) string {
	return strings.ToUpper(currency)
}
