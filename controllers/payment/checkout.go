package paymentController

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/middleware"
	"lms/models"
	"lms/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateCheckout prices the requested courses and opens a provider-hosted
// checkout session, persisting a pending ledger entry keyed by the session
// id. No enrollment side effects happen here.
func (pc *PaymentController) CreateCheckout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCheckout").(*struct {
		UserID    uint   `json:"userId"`
		CourseIDs []uint `json:"courseIds"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User ID mismatch!", nil)
	}

	var courses []models.Course
	if err := pc.Db.Where("id IN ? AND is_deleted = false", reqData.CourseIDs).Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	if len(courses) != len(reqData.CourseIDs) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Some courses in the cart no longer exist!", nil)
	}

	byID := make(map[uint]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}

	// Reject when any requested course is already owned
	var ownedIDs []uint
	if err := pc.Db.Model(&models.PurchasedCourse{}).
		Where("user_id = ? AND course_id IN ?", userID, reqData.CourseIDs).
		Pluck("course_id", &ownedIDs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check owned courses!", nil)
	}
	if len(ownedIDs) > 0 {
		ownedTitles := make([]string, 0, len(ownedIDs))
		for _, id := range ownedIDs {
			ownedTitles = append(ownedTitles, byID[id].Title)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You already own some of these courses!", fiber.Map{
			"ownedCourses": ownedTitles,
		})
	}

	lineItems := make([]payment.LineItem, 0, len(reqData.CourseIDs))
	instructorIDs := make([]uint, 0, len(reqData.CourseIDs))
	var amount int64
	for _, courseID := range reqData.CourseIDs {
		course := byID[courseID]
		lineItems = append(lineItems, payment.LineItem{
			Name:         course.Title,
			ImageURL:     course.ImageURL,
			UnitAmount:   course.Price,
			CourseID:     course.ID,
			InstructorID: course.InstructorID,
		})
		instructorIDs = append(instructorIDs, course.InstructorID)
		amount += course.Price
	}

	courseIDsJSON, _ := json.Marshal(reqData.CourseIDs)
	instructorIDsJSON, _ := json.Marshal(instructorIDs)

	// The metadata carries the full purchase context so the dispatcher can
	// act on a completion signal without re-reading the cart, which may
	// have changed by then.
	expiry := time.Duration(config.AppConfig.CheckoutExpiryMinutes) * time.Minute
	sess, err := pc.Provider.CreateSession(c.Context(), payment.CreateSessionParams{
		ClientReferenceID: fmt.Sprintf("%d", userID),
		LineItems:         lineItems,
		Metadata: map[string]string{
			"userId":        fmt.Sprintf("%d", userID),
			"courseIds":     string(courseIDsJSON),
			"instructorIds": string(instructorIDsJSON),
		},
		SuccessURL:     config.AppConfig.FrontendURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      config.AppConfig.FrontendURL + "/cart?canceled=true",
		ExpiresAt:      time.Now().Add(expiry).Unix(),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		log.Printf("Checkout session creation failed for user %d: %v", userID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create checkout session!", nil)
	}

	entry := models.Payment{
		SessionID: sess.ID,
		UserID:    userID,
		CourseIDs: models.EncodeIDList(reqData.CourseIDs),
		Amount:    amount,
		Status:    models.PaymentStatusPending,
	}
	if err := pc.Db.Create(&entry).Error; err != nil {
		// The session already exists at the provider. A later verify or
		// webhook call recreates this row from the session metadata.
		log.Printf("Ledger write failed for session %s: %v", sess.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", fiber.Map{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}
