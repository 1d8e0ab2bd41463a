package paymentValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateCheckout validates the checkout creation request
func CreateCheckout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID    uint   `json:"userId"`
			CourseIDs []uint `json:"courseIds"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if len(reqData.CourseIDs) == 0 {
			errors["courseIds"] = "Course IDs must be a non-empty array!"
		}

		seen := make(map[uint]bool, len(reqData.CourseIDs))
		for _, id := range reqData.CourseIDs {
			if id == 0 {
				errors["courseIds"] = "Course IDs must be positive!"
				break
			}
			if seen[id] {
				errors["courseIds"] = "Course IDs must be unique!"
				break
			}
			seen[id] = true
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

// VerifyPayment validates the verify request body
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			SessionID string `json:"sessionId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		sessionID := strings.TrimSpace(reqData.SessionID)
		if sessionID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session ID is required!", nil)
		}

		c.Locals("validatedSessionId", sessionID)
		return c.Next()
	}
}

// PaymentStatus validates the status poll path parameter
func PaymentStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Params("sessionId"))
		if sessionID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session ID is required!", nil)
		}

		c.Locals("validatedSessionId", sessionID)
		return c.Next()
	}
}
