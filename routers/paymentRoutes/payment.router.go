package paymentRoutes

import (
	paymentController "lms/controllers/payment"
	"lms/middleware"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes wires the checkout, reconciliation and status routes.
// The webhook route carries no session auth: the signature check against the
// shared secret is its authentication.
func SetupPaymentRoutes(app *fiber.App, pc *paymentController.PaymentController) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/create-checkout", middleware.JWTMiddleware, paymentValidator.CreateCheckout(), pc.CreateCheckout)
	paymentGroup.Post("/verify", middleware.JWTMiddleware, paymentValidator.VerifyPayment(), pc.VerifyPayment)
	paymentGroup.Get("/status/:sessionId", middleware.JWTMiddleware, paymentValidator.PaymentStatus(), pc.PaymentStatus)

	paymentGroup.Post("/webhook", pc.Webhook)
}
