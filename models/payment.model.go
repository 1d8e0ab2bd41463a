package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus defines the status of a payment ledger entry
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is the ledger entry for one checkout attempt, keyed by the
// provider's session id. Rows are never deleted; terminal statuses are
// COMPLETED, EXPIRED and FAILED, and nothing transitions out of COMPLETED.
type Payment struct {
	gorm.Model
	SessionID       string         `gorm:"uniqueIndex;not null" json:"sessionId"`
	UserID          uint           `gorm:"index;not null" json:"userId"`
	CourseIDs       datatypes.JSON `gorm:"not null" json:"courseIds"`
	Amount          int64          `gorm:"not null" json:"amount"` // minor currency units
	Status          PaymentStatus  `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	PaymentIntentID string         `gorm:"type:varchar(100)" json:"paymentIntentId"`
	CompletedAt     *time.Time     `json:"completedAt"`
	ExpiredAt       *time.Time     `json:"expiredAt,omitempty"`
	FailedAt        *time.Time     `json:"failedAt,omitempty"`

	// Last raw provider event applied to this row, kept for audit.
	RawEvent datatypes.JSON `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// CourseIDList decodes the stored course id set.
func (p *Payment) CourseIDList() []uint {
	var ids []uint
	if len(p.CourseIDs) == 0 {
		return ids
	}
	if err := json.Unmarshal(p.CourseIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeIDList renders an id list for storage in a JSON column or in
// provider session metadata.
func EncodeIDList(ids []uint) datatypes.JSON {
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

// DecodeIDList parses an id list embedded in provider session metadata.
func DecodeIDList(raw string) ([]uint, error) {
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
