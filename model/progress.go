package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrainingDayCount is the number of training days every course has
const TrainingDayCount = 3

var ErrInvalidDay = errors.New("day must be one of day1, day2, day3")

// Day is a 1-based training day number
type Day int

// ParseDay accepts "day1".."day3" as well as the bare numbers "1".."3"
func ParseDay(raw string) (Day, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "day")

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > TrainingDayCount {
		return 0, ErrInvalidDay
	}
	return Day(n), nil
}

// Key returns the storage key for the day, e.g. "day2"
func (d Day) Key() string {
	return fmt.Sprintf("day%d", int(d))
}

// DayProgress records which training days of a course are complete
type DayProgress struct {
	Day1 bool `json:"day1" bson:"day1"`
	Day2 bool `json:"day2" bson:"day2"`
	Day3 bool `json:"day3" bson:"day3"`
}

func (p DayProgress) Get(d Day) bool {
	switch d {
	case 1:
		return p.Day1
	case 2:
		return p.Day2
	case 3:
		return p.Day3
	}
	return false
}

func (p *DayProgress) Set(d Day, completed bool) {
	switch d {
	case 1:
		p.Day1 = completed
	case 2:
		p.Day2 = completed
	case 3:
		p.Day3 = completed
	}
}

func (p DayProgress) CompletedCount() int {
	n := 0
	for d := Day(1); d <= TrainingDayCount; d++ {
		if p.Get(d) {
			n++
		}
	}
	return n
}

func (p DayProgress) AllComplete() bool {
	return p.CompletedCount() == TrainingDayCount
}

// PaymentInfo is the per-course payment record kept on the user
type PaymentInfo struct {
	Paid      bool       `json:"paid" bson:"paid"`
	PaymentID string     `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	OrderID   string     `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Amount    float64    `json:"amount" bson:"amount"`
	PaidAt    *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}
