package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Provider event kinds the dispatcher acts on. Anything else is
// acknowledged and ignored.
const (
	EventSessionCompleted  = "checkout.session.completed"
	EventSessionExpired    = "checkout.session.expired"
	EventAsyncPaySucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPayFailed    = "checkout.session.async_payment_failed"
)

// WebhookEvent is a verified, provider-neutral callback event. The payload
// is only parsed after its signature checked out against the shared secret.
type WebhookEvent struct {
	Type              string
	SessionID         string
	ClientReferenceID string
	Paid              bool
	PaymentIntentID   string
	AmountTotal       int64
	Metadata          map[string]string
	Raw               []byte
}

// ParseWebhookEvent verifies the message signature and decodes the checkout
// session carried by the event. A signature mismatch is the only error the
// caller may surface to the provider as a non-2xx response.
func ParseWebhookEvent(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("webhook signature invalid: %w", err)
	}

	we := &WebhookEvent{
		Type: string(event.Type),
		Raw:  event.Data.Raw,
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		// Signature was valid; an unexpected object shape is an event we
		// do not handle, not a delivery failure.
		return we, nil
	}

	we.SessionID = sess.ID
	we.ClientReferenceID = sess.ClientReferenceID
	we.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	we.AmountTotal = sess.AmountTotal
	we.Metadata = sess.Metadata
	if sess.PaymentIntent != nil {
		we.PaymentIntentID = sess.PaymentIntent.ID
	}
	return we, nil
}
