package paymentController

import (
	"errors"

	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentStatus is the read-only ledger lookup for client polling. It never
// touches the provider or the enrollment state.
func (pc *PaymentController) PaymentStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessionID, ok := c.Locals("validatedSessionId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session ID is required!", nil)
	}

	var entry models.Payment
	if err := pc.Db.Where("session_id = ?", sessionID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to get payment status!", nil)
	}

	if entry.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Unauthorized!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status fetched!", fiber.Map{
		"status":      entry.Status,
		"courseIds":   entry.CourseIDList(),
		"amount":      entry.Amount,
		"completedAt": entry.CompletedAt,
	})
}
