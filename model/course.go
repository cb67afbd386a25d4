package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrInvalidCourseID = errors.New("invalid course id")

	courseIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const maxCourseIDLength = 64

// CourseID is the human-readable slug identifying a course, e.g. "web-development"
type CourseID string

// ParseCourseID validates a raw course identifier coming from a request
func ParseCourseID(raw string) (CourseID, error) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxCourseIDLength || !courseIDPattern.MatchString(id) {
		return "", ErrInvalidCourseID
	}
	return CourseID(id), nil
}

func (id CourseID) String() string {
	return string(id)
}

// TrainingDay is one of the fixed units of course content
type TrainingDay struct {
	Day      int    `json:"day" bson:"day"`
	Title    string `json:"title" bson:"title"`
	Content  string `json:"content" bson:"content"`
	VideoURL string `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
}

// Course is a purchasable training program. Inactive courses are hidden, never deleted.
type Course struct {
	CourseID           CourseID                          `gorm:"primaryKey;type:varchar(64)" json:"courseId" bson:"_id"`
	Title              string                            `gorm:"not null" json:"title" bson:"title"`
	Description        string                            `gorm:"type:text" json:"description" bson:"description"`
	Price              float64                           `gorm:"not null;check:price >= 0" json:"price" bson:"price"`
	Duration           string                            `gorm:"type:varchar(50)" json:"duration" bson:"duration"`
	TrainingDays       datatypes.JSONSlice[TrainingDay] `gorm:"type:jsonb" json:"trainingDays" bson:"trainingDays"`
	AssignmentRequired bool                              `gorm:"not null" json:"assignmentRequired" bson:"assignmentRequired"`
	IsActive           bool                              `gorm:"not null;index" json:"isActive" bson:"isActive"`
	CreatedAt          time.Time                         `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time                         `json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// AmountInSubunits converts the price to the smallest currency unit (paise for INR)
func (c *Course) AmountInSubunits() int64 {
	return int64(c.Price*100 + 0.5)
}
