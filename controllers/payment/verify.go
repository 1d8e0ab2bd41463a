package paymentController

import (
	"errors"
	"fmt"
	"log"

	"lms/middleware"
	"lms/models"
	"lms/payment"

	"github.com/gofiber/fiber/v2"
)

// VerifyPayment is the client-initiated completion path, called after the
// provider redirects back to the frontend. The provider is re-queried for
// the authoritative session state; a paid session converges on the same
// enrollment transaction as the webhook path.
func (pc *PaymentController) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessionID, ok := c.Locals("validatedSessionId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session ID is required!", nil)
	}

	sess, err := pc.Provider.RetrieveSession(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Checkout session not found!", nil)
		}
		log.Printf("Session retrieve failed for %s: %v", sessionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
	}

	if sess.ClientReferenceID != fmt.Sprintf("%d", userID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Session does not belong to user!", nil)
	}

	if !sess.Paid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment was not successful!", fiber.Map{
			"success": false,
		})
	}

	// Idempotency check before touching the enrollment transaction
	var existing models.Payment
	if err := pc.Db.Where("session_id = ? AND status = ?", sessionID, models.PaymentStatusCompleted).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already processed!", fiber.Map{
			"success":          true,
			"courseIds":        existing.CourseIDList(),
			"alreadyProcessed": true,
		})
	}

	courseIDs, err := models.DecodeIDList(sess.Metadata["courseIds"])
	if err != nil {
		log.Printf("Corrupt courseIds metadata on session %s: %v", sessionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
	}
	instructorIDs, err := models.DecodeIDList(sess.Metadata["instructorIds"])
	if err != nil {
		log.Printf("Corrupt instructorIds metadata on session %s: %v", sessionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify payment!", nil)
	}

	outcome, err := pc.Enroller.Enroll(payment.EnrollArgs{
		UserID:          userID,
		CourseIDs:       courseIDs,
		InstructorIDs:   instructorIDs,
		SessionID:       sessionID,
		PaymentIntentID: sess.PaymentIntentID,
		Amount:          sess.AmountTotal,
	})
	if err != nil {
		if errors.Is(err, payment.ErrUserNotFound) {
			log.Printf("ALERT: paid session %s references unknown user %d", sessionID, userID)
		}
		log.Printf("Enrollment failed for session %s: %v", sessionID, err)
		// Rolled back completely; the client may retry the verify call.
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process enrollment!", nil)
	}

	go pc.sendReceipt(userID, outcome.NewCourseIDs, sess.AmountTotal)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified and courses enrolled successfully!", fiber.Map{
		"success":          true,
		"courseIds":        courseIDs,
		"alreadyProcessed": outcome.AlreadyProcessed,
	})
}
