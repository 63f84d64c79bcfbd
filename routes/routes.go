package routes

import (
	"net/http"

	"github.com/boubamga9/Pattyly-sub000/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, webhooks *controllers.WebhookController, checkout *controllers.CheckoutController) {
	// Public
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "payment-service"})
	})

	router.POST("/checkout", checkout.CreateCheckout)

	// Provider callbacks; each Stripe endpoint carries its own signing secret.
	hooks := router.Group("/webhooks")
	{
		hooks.POST("/stripe", webhooks.StripeWebhook)
		hooks.POST("/stripe/accounts", webhooks.StripeAccountsWebhook)
		hooks.POST("/stripe/payments", webhooks.StripePaymentsWebhook)
		hooks.POST("/paypal", webhooks.PayPalWebhook)
	}
}
