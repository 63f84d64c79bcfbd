package models

// PayPal webhook envelope and the resource shapes this service consumes.
// Decoded at the boundary right after signature verification; anything the
// known handlers do not read stays in RawResource semantics on the provider
// side and is simply ignored here.

type PayPalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PayPalRelatedIDs struct {
	OrderID string `json:"order_id"`
}

type PayPalSupplementaryData struct {
	RelatedIDs PayPalRelatedIDs `json:"related_ids"`
}

type PayPalResource struct {
	ID                string                  `json:"id"`
	Status            string                  `json:"status"`
	Amount            PayPalAmount            `json:"amount"`
	SupplementaryData PayPalSupplementaryData `json:"supplementary_data"`

	// Merchant onboarding fields (MERCHANT.ONBOARDING.COMPLETED).
	MerchantID            string `json:"merchant_id"`
	TrackingID            string `json:"tracking_id"`
	PermissionsGranted    bool   `json:"permissions_granted"`
	PrimaryEmailConfirmed bool   `json:"primary_email_confirmed"`
}

type PayPalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PayPalResource `json:"resource"`
}

// PayPal event types this service handles.
const (
	PayPalEventCaptureCompleted  = "PAYMENT.CAPTURE.COMPLETED"
	PayPalEventMerchantOnboarded = "MERCHANT.ONBOARDING.COMPLETED"
)
