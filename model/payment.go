package model

import (
	"time"
)

// PaymentState is the lifecycle of a gateway order
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentCompleted PaymentState = "completed"
	PaymentExpired   PaymentState = "expired"
)

// CoursePayment is the ledger entry for a Razorpay order created for a course
type CoursePayment struct {
	ID                string       `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID            string       `gorm:"type:varchar(36);not null;index" json:"userId" bson:"userId"`
	CourseID          CourseID     `gorm:"type:varchar(64);not null;index" json:"courseId" bson:"courseId"`
	RazorpayOrderID   string       `gorm:"type:varchar(100);uniqueIndex" json:"razorpayOrderId" bson:"razorpayOrderId"`
	RazorpayPaymentID string       `gorm:"type:varchar(100)" json:"razorpayPaymentId,omitempty" bson:"razorpayPaymentId,omitempty"`
	Receipt           string       `gorm:"type:varchar(40)" json:"receipt" bson:"receipt"`
	Amount            float64      `gorm:"not null" json:"amount" bson:"amount"`
	Currency          string       `gorm:"type:varchar(10);default:'INR'" json:"currency" bson:"currency"`
	Status            PaymentState `gorm:"type:varchar(20);default:'pending';index" json:"status" bson:"status"`
	PaidAt            *time.Time   `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	CreatedAt         time.Time    `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for CoursePayment
func (CoursePayment) TableName() string {
	return "course_payments"
}
