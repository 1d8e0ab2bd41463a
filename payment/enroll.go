package payment

import (
	"errors"
	"fmt"
	"time"

	"lms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrIDListMismatch     = errors.New("course and instructor id lists differ in length")
)

// EnrollArgs is the purchase context captured at checkout time and carried
// through the provider's session metadata. CourseIDs and InstructorIDs are
// parallel: CourseIDs[i] was taught by InstructorIDs[i] when the session was
// created.
type EnrollArgs struct {
	UserID          uint
	CourseIDs       []uint
	InstructorIDs   []uint
	SessionID       string
	PaymentIntentID string
	Amount          int64 // session total, minor currency units
	RawEvent        []byte
}

// EnrollOutcome reports what the transaction actually changed.
type EnrollOutcome struct {
	AlreadyProcessed bool
	NewCourseIDs     []uint
}

// Enroller applies the enrollment state transition for a paid session.
type Enroller struct {
	db *gorm.DB
}

func NewEnroller(db *gorm.DB) *Enroller {
	return &Enroller{db: db}
}

// Enroll grants course access for one paid checkout session: purchase
// entries, progress rows, cart cleanup, course counters and instructor
// income, plus the ledger flip to COMPLETED - all inside one database
// transaction, all or nothing.
//
// The first statement claims the ledger row with a compare-and-set on its
// status. Concurrent completions for the same session serialize on that row;
// the loser observes COMPLETED and returns without touching anything, which
// is what keeps the verify path and the webhook path from double-enrolling.
func (e *Enroller) Enroll(args EnrollArgs) (*EnrollOutcome, error) {
	if len(args.CourseIDs) != len(args.InstructorIDs) {
		return nil, ErrIDListMismatch
	}

	outcome := &EnrollOutcome{}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		updates := map[string]interface{}{
			"status":            models.PaymentStatusCompleted,
			"completed_at":      now,
			"payment_intent_id": args.PaymentIntentID,
		}
		if len(args.RawEvent) > 0 {
			updates["raw_event"] = datatypes.JSON(args.RawEvent)
		}

		// Completed wins over expired/failed whatever the delivery order,
		// and nothing ever leaves COMPLETED.
		res := tx.Model(&models.Payment{}).
			Where("session_id = ? AND status <> ?", args.SessionID, models.PaymentStatusCompleted).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var existing models.Payment
			err := tx.Where("session_id = ?", args.SessionID).First(&existing).Error
			switch {
			case err == nil:
				// Already completed by the other completion path.
				outcome.AlreadyProcessed = true
				return nil
			case errors.Is(err, gorm.ErrRecordNotFound):
				// The pending row was lost after session creation. The
				// session metadata carries enough context to recreate it.
				entry := models.Payment{
					SessionID:       args.SessionID,
					UserID:          args.UserID,
					CourseIDs:       models.EncodeIDList(args.CourseIDs),
					Amount:          args.Amount,
					Status:          models.PaymentStatusCompleted,
					PaymentIntentID: args.PaymentIntentID,
					CompletedAt:     &now,
				}
				if len(args.RawEvent) > 0 {
					entry.RawEvent = datatypes.JSON(args.RawEvent)
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		var user models.User
		if err := tx.Where("id = ? AND is_deleted = false", args.UserID).First(&user).Error; err != nil {
			// Provider knows a user our database does not: desync, not a
			// retryable condition.
			return fmt.Errorf("%w: id %d", ErrUserNotFound, args.UserID)
		}

		var ownedIDs []uint
		if err := tx.Model(&models.PurchasedCourse{}).
			Where("user_id = ? AND course_id IN ?", args.UserID, args.CourseIDs).
			Pluck("course_id", &ownedIDs).Error; err != nil {
			return err
		}
		owned := make(map[uint]bool, len(ownedIDs))
		for _, id := range ownedIDs {
			owned[id] = true
		}

		newCourseIDs := make([]uint, 0, len(args.CourseIDs))
		for _, id := range args.CourseIDs {
			if !owned[id] {
				newCourseIDs = append(newCourseIDs, id)
			}
		}

		for _, courseID := range newCourseIDs {
			purchase := models.PurchasedCourse{
				UserID:      args.UserID,
				CourseID:    courseID,
				PurchasedAt: now,
			}
			if err := tx.Create(&purchase).Error; err != nil {
				return err
			}
		}

		// Progress rows are created at most once per course, so a partial
		// retry never duplicates them.
		if len(newCourseIDs) > 0 {
			var tracked []uint
			if err := tx.Model(&models.CourseProgress{}).
				Where("user_id = ? AND course_id IN ?", args.UserID, newCourseIDs).
				Pluck("course_id", &tracked).Error; err != nil {
				return err
			}
			hasProgress := make(map[uint]bool, len(tracked))
			for _, id := range tracked {
				hasProgress[id] = true
			}
			for _, courseID := range newCourseIDs {
				if hasProgress[courseID] {
					continue
				}
				progress := models.CourseProgress{
					UserID:     args.UserID,
					CourseID:   courseID,
					Progress:   0,
					LastViewed: now,
				}
				if err := tx.Create(&progress).Error; err != nil {
					return err
				}
			}
		}

		// Every paid course leaves the cart, owned or not.
		if err := tx.Unscoped().
			Where("user_id = ? AND course_id IN ?", args.UserID, args.CourseIDs).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		for _, courseID := range newCourseIDs {
			if err := tx.Model(&models.Course{}).
				Where("id = ?", courseID).
				UpdateColumn("enrolled_students", gorm.Expr("enrolled_students + ?", 1)).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.CourseStudent{CourseID: courseID, UserID: args.UserID}).Error; err != nil {
				return err
			}
		}

		newSet := make(map[uint]bool, len(newCourseIDs))
		for _, id := range newCourseIDs {
			newSet[id] = true
		}
		for i, courseID := range args.CourseIDs {
			if !newSet[courseID] {
				continue
			}
			instructorID := args.InstructorIDs[i]

			// Income is credited from the price at completion time.
			var course models.Course
			if err := tx.Select("price").Where("id = ?", courseID).First(&course).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			res := tx.Model(&models.User{}).
				Where("id = ? AND role = ? AND is_deleted = false", instructorID, models.RoleInstructor).
				Updates(map[string]interface{}{
					"total_income":          gorm.Expr("total_income + ?", course.Price),
					"students_taught_count": gorm.Expr("students_taught_count + ?", 1),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: id %d for course %d", ErrInstructorNotFound, instructorID, courseID)
			}
		}

		outcome.NewCourseIDs = newCourseIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
