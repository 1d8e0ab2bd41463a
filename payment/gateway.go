package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrProviderDown    = errors.New("payment provider unavailable")
)

// LineItem is one priced course in a checkout session.
type LineItem struct {
	Name         string
	ImageURL     string
	UnitAmount   int64 // minor currency units
	CourseID     uint
	InstructorID uint
}

// CreateSessionParams carries everything the provider needs to host a
// checkout. Metadata is echoed back on every later signal so the dispatcher
// can recover the purchase context without a second database read.
type CreateSessionParams struct {
	ClientReferenceID string
	LineItems         []LineItem
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	ExpiresAt         int64
	IdempotencyKey    string
}

// Session is the provider-neutral view of a hosted checkout session.
type Session struct {
	ID                string
	URL               string
	ClientReferenceID string
	Paid              bool
	PaymentIntentID   string
	AmountTotal       int64
	Metadata          map[string]string
}

// Provider is the injected payment-provider handle used by the checkout and
// reconciliation paths. Credentials come from explicit configuration, never
// from process-global provider state.
type Provider interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

// StripeProvider implements Provider against Stripe Checkout.
type StripeProvider struct {
	client *client.API
}

// NewStripeProvider creates a StripeProvider with its own client, avoiding
// the package-global stripe key.
func NewStripeProvider(apiKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProvider{client: sc}
}

func (sp *StripeProvider) CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.LineItems))
	for _, item := range p.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
			Metadata: map[string]string{
				"courseId":     fmt.Sprintf("%d", item.CourseID),
				"instructorId": fmt.Sprintf("%d", item.InstructorID),
			},
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyINR)),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		ClientReferenceID:  stripe.String(p.ClientReferenceID),
		ExpiresAt:          stripe.Int64(p.ExpiresAt),
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	// Prevents a duplicate hosted session if the network fails after Stripe
	// already created one.
	if p.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(p.IdempotencyKey)
	}
	params.Context = ctx

	sess, err := sp.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, sp.mapStripeError(err)
	}
	return toSession(sess), nil
}

func (sp *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := sp.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, sp.mapStripeError(err)
	}
	return toSession(sess), nil
}

func toSession(sess *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:                sess.ID,
		URL:               sess.URL,
		ClientReferenceID: sess.ClientReferenceID,
		Paid:              sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:       sess.AmountTotal,
		Metadata:          sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		s.PaymentIntentID = sess.PaymentIntent.ID
	}
	return s
}

// mapStripeError converts stripe-go errors into domain errors so the
// controllers never import the provider library.
func (sp *StripeProvider) mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return ErrSessionNotFound
		}
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return ErrProviderDown
		}
		return fmt.Errorf("stripe: %s", stripeErr.Msg)
	}
	return fmt.Errorf("provider error: %w", err)
}
