package paymentController

import (
	"log"

	"lms/config"
	"lms/models"
	"lms/payment"
	"lms/utils"

	"gorm.io/gorm"
)

// PaymentController wires the checkout, verify, webhook and status handlers
// to an injected provider handle and database connection.
type PaymentController struct {
	Db            *gorm.DB
	Provider      payment.Provider
	Enroller      *payment.Enroller
	WebhookSecret string
}

func New(db *gorm.DB, provider payment.Provider, webhookSecret string) *PaymentController {
	return &PaymentController{
		Db:            db,
		Provider:      provider,
		Enroller:      payment.NewEnroller(db),
		WebhookSecret: webhookSecret,
	}
}

// sendReceipt mails a purchase confirmation for freshly enrolled courses.
// Failures are logged; the enrollment already committed.
func (pc *PaymentController) sendReceipt(userID uint, courseIDs []uint, amount int64) {
	if len(courseIDs) == 0 {
		return
	}
	if config.AppConfig == nil || config.AppConfig.EmailSender == "" {
		return
	}

	var user models.User
	if err := pc.Db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		log.Printf("Receipt skipped, user %d not found: %v", userID, err)
		return
	}

	var courses []models.Course
	if err := pc.Db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		log.Printf("Receipt skipped, course lookup failed: %v", err)
		return
	}

	titles := make([]string, 0, len(courses))
	for _, course := range courses {
		titles = append(titles, course.Title)
	}

	if err := utils.SendPurchaseReceipt(user.Email, user.Name, titles, amount); err != nil {
		log.Printf("Failed to send purchase receipt to %s: %v", user.Email, err)
	}
}
