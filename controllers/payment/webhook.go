package paymentController

import (
	"errors"
	"log"
	"strconv"
	"time"

	"lms/middleware"
	"lms/models"
	"lms/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Webhook is the provider's push-based completion path and the authoritative
// source of payment truth. Once the signature is valid the provider always
// gets a 2xx back, even if internal processing fails - its retry policy
// redelivers the whole callback on non-2xx, and the enrollment transaction
// is idempotent, so an operator-side retry is safer than a redelivery storm.
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	event, err := payment.ParseWebhookEvent(c.Body(), c.Get("Stripe-Signature"), pc.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid webhook signature!", nil)
	}

	switch event.Type {
	case payment.EventSessionCompleted:
		if !event.Paid {
			break
		}
		pc.completeSession(event)

	case payment.EventSessionExpired:
		now := time.Now()
		if err := pc.Db.Model(&models.Payment{}).
			Where("session_id = ? AND status = ?", event.SessionID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":     models.PaymentStatusExpired,
				"expired_at": now,
			}).Error; err != nil {
			log.Printf("Failed to expire session %s: %v", event.SessionID, err)
		}

	case payment.EventAsyncPaySucceeded:
		// Delayed payment rails confirm after the session itself closed.
		var entry models.Payment
		err := pc.Db.Where("session_id = ?", event.SessionID).First(&entry).Error
		if err == nil && entry.Status == models.PaymentStatusCompleted {
			log.Printf("Session %s already processed", event.SessionID)
			break
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Ledger lookup failed for session %s: %v", event.SessionID, err)
			break
		}
		pc.completeSession(event)

	case payment.EventAsyncPayFailed:
		now := time.Now()
		if err := pc.Db.Model(&models.Payment{}).
			Where("session_id = ? AND status = ?", event.SessionID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":    models.PaymentStatusFailed,
				"failed_at": now,
			}).Error; err != nil {
			log.Printf("Failed to mark session %s failed: %v", event.SessionID, err)
		}

	default:
		log.Printf("Unhandled webhook event: %s", event.Type)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook received!", fiber.Map{
		"received": true,
	})
}

// completeSession runs the enrollment transaction for a paid session event.
// All context comes from the event payload, not a fresh provider query.
func (pc *PaymentController) completeSession(event *payment.WebhookEvent) {
	userID64, err := strconv.ParseUint(event.ClientReferenceID, 10, 64)
	if err != nil {
		log.Printf("Session %s has no usable client reference: %v", event.SessionID, err)
		return
	}
	userID := uint(userID64)

	var existing models.Payment
	if err := pc.Db.Where("session_id = ? AND status = ?", event.SessionID, models.PaymentStatusCompleted).
		First(&existing).Error; err == nil {
		log.Printf("Session %s already processed", event.SessionID)
		return
	}

	courseIDs, err := models.DecodeIDList(event.Metadata["courseIds"])
	if err != nil {
		log.Printf("Corrupt courseIds metadata on session %s: %v", event.SessionID, err)
		return
	}
	instructorIDs, err := models.DecodeIDList(event.Metadata["instructorIds"])
	if err != nil {
		log.Printf("Corrupt instructorIds metadata on session %s: %v", event.SessionID, err)
		return
	}

	outcome, err := pc.Enroller.Enroll(payment.EnrollArgs{
		UserID:          userID,
		CourseIDs:       courseIDs,
		InstructorIDs:   instructorIDs,
		SessionID:       event.SessionID,
		PaymentIntentID: event.PaymentIntentID,
		Amount:          event.AmountTotal,
		RawEvent:        event.Raw,
	})
	if err != nil {
		if errors.Is(err, payment.ErrUserNotFound) {
			log.Printf("ALERT: paid session %s references unknown user %d", event.SessionID, userID)
			return
		}
		log.Printf("Enrollment failed for session %s: %v", event.SessionID, err)
		return
	}

	if outcome.AlreadyProcessed {
		log.Printf("Session %s already processed", event.SessionID)
		return
	}

	log.Printf("Enrolled user %d in %d courses for session %s", userID, len(outcome.NewCourseIDs), event.SessionID)
	go pc.sendReceipt(userID, outcome.NewCourseIDs, event.AmountTotal)
}
