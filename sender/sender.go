package sender

import (
	"context"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// TemplateSender delivers one transactional email rendered provider-side from
// a named template. Implementations propagate provider errors; swallowing or
// retrying is the caller's policy.
type TemplateSender interface {
	Send(ctx context.Context, template, to string, params map[string]interface{}) (SendResult, error)
}
