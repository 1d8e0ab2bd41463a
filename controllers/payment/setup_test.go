package paymentController_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lms/config"
	paymentController "lms/controllers/payment"
	"lms/middleware"
	"lms/models"
	"lms/payment"
	paymentRoutes "lms/routers/paymentRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test_secret"

// mockProvider stands in for the hosted checkout provider. Handlers are set
// per test; CreateSession captures its params for assertions.
type mockProvider struct {
	createFn   func(ctx context.Context, p payment.CreateSessionParams) (*payment.Session, error)
	retrieveFn func(ctx context.Context, sessionID string) (*payment.Session, error)

	lastCreateParams *payment.CreateSessionParams
}

func (m *mockProvider) CreateSession(ctx context.Context, p payment.CreateSessionParams) (*payment.Session, error) {
	m.lastCreateParams = &p
	if m.createFn == nil {
		return nil, payment.ErrProviderDown
	}
	return m.createFn(ctx, p)
}

func (m *mockProvider) RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	if m.retrieveFn == nil {
		return nil, payment.ErrSessionNotFound
	}
	return m.retrieveFn(ctx, sessionID)
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	provider *mockProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.LoadConfig()
	config.AppConfig.EmailSender = "" // no receipt mail in tests

	dsn := filepath.Join(t.TempDir(), "lms_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseStudent{},
		&models.PurchasedCourse{},
		&models.CourseProgress{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Payment{},
	))

	provider := &mockProvider{}
	pc := paymentController.New(db, provider, testWebhookSecret)

	app := fiber.New()
	paymentRoutes.SetupPaymentRoutes(app, pc)

	return &testEnv{app: app, db: db, provider: provider}
}

type checkoutFixture struct {
	student    models.User
	instructor models.User
	courseA    models.Course
	courseB    models.Course
}

func (e *testEnv) seedCheckout(t *testing.T, sess string) checkoutFixture {
	t.Helper()

	f := checkoutFixture{
		student:    models.User{Name: "Asha", Email: "asha@example.com", Password: "x", Role: models.RoleStudent},
		instructor: models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x", Role: models.RoleInstructor},
	}
	require.NoError(t, e.db.Create(&f.student).Error)
	require.NoError(t, e.db.Create(&f.instructor).Error)

	f.courseA = models.Course{Title: "Go Basics", Description: "a", Price: 10000, InstructorID: f.instructor.ID, Status: "ACTIVE", IsPublished: true}
	f.courseB = models.Course{Title: "Advanced Go", Description: "b", Price: 20000, InstructorID: f.instructor.ID, Status: "ACTIVE", IsPublished: true}
	require.NoError(t, e.db.Create(&f.courseA).Error)
	require.NoError(t, e.db.Create(&f.courseB).Error)

	require.NoError(t, e.db.Create(&models.CartItem{UserID: f.student.ID, CourseID: f.courseA.ID}).Error)
	require.NoError(t, e.db.Create(&models.CartItem{UserID: f.student.ID, CourseID: f.courseB.ID}).Error)

	if sess != "" {
		require.NoError(t, e.db.Create(&models.Payment{
			SessionID: sess,
			UserID:    f.student.ID,
			CourseIDs: models.EncodeIDList([]uint{f.courseA.ID, f.courseB.ID}),
			Amount:    30000,
			Status:    models.PaymentStatusPending,
		}).Error)
	}
	return f
}

func (f checkoutFixture) courseIDs() []uint {
	return []uint{f.courseA.ID, f.courseB.ID}
}

func (f checkoutFixture) paidSession(id string) *payment.Session {
	courseIDs, _ := json.Marshal(f.courseIDs())
	instructorIDs, _ := json.Marshal([]uint{f.instructor.ID, f.instructor.ID})
	return &payment.Session{
		ID:                id,
		ClientReferenceID: fmt.Sprintf("%d", f.student.ID),
		Paid:              true,
		PaymentIntentID:   "pi_test_1",
		AmountTotal:       30000,
		Metadata: map[string]string{
			"userId":        fmt.Sprintf("%d", f.student.ID),
			"courseIds":     string(courseIDs),
			"instructorIds": string(instructorIDs),
		},
	}
}

func authToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

func jsonRequest(t *testing.T, method, target, token string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type apiResponse struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, apiResponse) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

// sessionEventPayload renders a provider event envelope the way the webhook
// endpoint receives it.
func sessionEventPayload(t *testing.T, eventType string, f checkoutFixture, sessionID, paymentStatus string) []byte {
	t.Helper()
	courseIDs, _ := json.Marshal(f.courseIDs())
	instructorIDs, _ := json.Marshal([]uint{f.instructor.ID, f.instructor.ID})

	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_" + sessionID,
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":                  sessionID,
				"object":              "checkout.session",
				"client_reference_id": fmt.Sprintf("%d", f.student.ID),
				"payment_status":      paymentStatus,
				"payment_intent":      "pi_test_1",
				"amount_total":        30000,
				"metadata": map[string]string{
					"userId":        fmt.Sprintf("%d", f.student.ID),
					"courseIds":     string(courseIDs),
					"instructorIds": string(instructorIDs),
				},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func signedWebhookRequest(t *testing.T, payload []byte, secret string) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}
