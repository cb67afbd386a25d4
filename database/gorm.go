package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/model"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// userRow is the relational shape of model.User. The per-course maps live in
// jsonb columns and the enrolled set in a text[] column.
type userRow struct {
	ID               string                                                   `gorm:"primaryKey;type:varchar(36)"`
	Name             string                                                   `gorm:"not null"`
	Email            string                                                   `gorm:"uniqueIndex;not null"`
	PasswordHash     string                                                   `gorm:"not null"`
	Role             string                                                   `gorm:"type:varchar(20);not null;index"`
	EnrolledCourses  pq.StringArray                                           `gorm:"type:text[]"`
	TrainingProgress datatypes.JSONType[map[model.CourseID]model.DayProgress] `gorm:"type:jsonb"`
	Assignments      datatypes.JSONType[map[model.CourseID]string]            `gorm:"type:jsonb"`
	PaymentStatus    datatypes.JSONType[map[model.CourseID]model.PaymentInfo] `gorm:"type:jsonb"`
	Shortlisted      bool                                                     `gorm:"not null"`
	CreatedAt        time.Time                                                `gorm:"index"`
	UpdatedAt        time.Time
}

func (userRow) TableName() string {
	return "users"
}

func newUserRow(u *model.User) userRow {
	c := u.Clone()
	enrolled := make(pq.StringArray, 0, len(c.EnrolledCourses))
	for _, id := range c.EnrolledCourses {
		enrolled = append(enrolled, id.String())
	}
	pub := c.Public()

	return userRow{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		PasswordHash:     c.PasswordHash,
		Role:             string(c.Role),
		EnrolledCourses:  enrolled,
		TrainingProgress: datatypes.NewJSONType(pub.TrainingProgress),
		Assignments:      datatypes.NewJSONType(pub.Assignments),
		PaymentStatus:    datatypes.NewJSONType(pub.PaymentStatus),
		Shortlisted:      c.Shortlisted,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (r *userRow) toModel() *model.User {
	enrolled := make([]model.CourseID, 0, len(r.EnrolledCourses))
	for _, id := range r.EnrolledCourses {
		enrolled = append(enrolled, model.CourseID(id))
	}

	return &model.User{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		PasswordHash:     r.PasswordHash,
		Role:             model.Role(r.Role),
		EnrolledCourses:  enrolled,
		TrainingProgress: r.TrainingProgress.Data(),
		Assignments:      r.Assignments.Data(),
		PaymentStatus:    r.PaymentStatus.Data(),
		Shortlisted:      r.Shortlisted,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnviornmentVariable) (*GORMStore, error) {
	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return NewGORMStore(db), nil
}

// NewGORMStore wraps an already opened connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate...")

	if err := s.db.AutoMigrate(&userRow{}, &model.Course{}, &model.CoursePayment{}); err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GORMStore) Users() UserRepository       { return gormUsers{s.db} }
func (s *GORMStore) Courses() CourseRepository   { return gormCourses{s.db} }
func (s *GORMStore) Payments() PaymentRepository { return gormPayments{s.db} }

func translateGORMError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := newUserRow(u)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r gormUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGORMError(err)
	}
	return row.toModel(), nil
}

func (r gormUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, translateGORMError(err)
	}
	return row.toModel(), nil
}

func (r gormUsers) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toModel())
	}
	return users, nil
}

func (r gormUsers) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userRow{}).Where("role = ?", string(role)).Count(&count).Error
	return count, err
}

// mutate loads the row with FOR UPDATE, applies fn and saves it in one transaction
func (r gormUsers) mutate(ctx context.Context, id string, fn func(u *model.User) error) (*model.User, error) {
	var out *model.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error; err != nil {
			return translateGORMError(err)
		}

		u := row.toModel()
		if err := fn(u); err != nil {
			return err
		}

		updated := newUserRow(u)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		out = updated.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r gormUsers) Enroll(ctx context.Context, userID string, courseID model.CourseID, payment model.PaymentInfo) (*model.User, error) {
	return r.mutate(ctx, userID, func(u *model.User) error {
		u.Enroll(courseID, payment)
		return nil
	})
}

func (r gormUsers) SetDayProgress(ctx context.Context, userID string, courseID model.CourseID, day model.Day, completed bool) (*model.User, error) {
	return r.mutate(ctx, userID, func(u *model.User) error {
		if !u.IsEnrolled(courseID) {
			return ErrNotFound
		}
		u.SetDayProgress(courseID, day, completed)
		return nil
	})
}

func (r gormUsers) SetAssignment(ctx context.Context, userID string, courseID model.CourseID, fileRef string) (*model.User, error) {
	return r.mutate(ctx, userID, func(u *model.User) error {
		if !u.IsEnrolled(courseID) {
			return ErrNotFound
		}
		u.SetAssignment(courseID, fileRef)
		return nil
	})
}

func (r gormUsers) SetShortlisted(ctx context.Context, userID string, shortlisted bool) (*model.User, error) {
	return r.mutate(ctx, userID, func(u *model.User) error {
		u.Shortlisted = shortlisted
		return nil
	})
}

type gormCourses struct{ db *gorm.DB }

func (r gormCourses) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error
	return count, err
}

func (r gormCourses) InsertMany(ctx context.Context, courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&courses).Error
}

func (r gormCourses) ListActive(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&courses).Error
	return courses, err
}

func (r gormCourses) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&courses).Error
	return courses, err
}

func (r gormCourses) FindActive(ctx context.Context, id model.CourseID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_active = ?", id.String(), true).
		First(&course).Error; err != nil {
		return nil, translateGORMError(err)
	}
	return &course, nil
}

func (r gormCourses) ListActiveByIDs(ctx context.Context, ids []model.CourseID) ([]model.Course, error) {
	if len(ids) == 0 {
		return []model.Course{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("course_id IN ? AND is_active = ?", raw, true).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

type gormPayments struct{ db *gorm.DB }

func (r gormPayments) Create(ctx context.Context, p *model.CoursePayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r gormPayments) FindByOrderID(ctx context.Context, orderID string) (*model.CoursePayment, error) {
	var p model.CoursePayment
	if err := r.db.WithContext(ctx).Where("razorpay_order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, translateGORMError(err)
	}
	return &p, nil
}

func (r gormPayments) MarkCompleted(ctx context.Context, orderID, paymentID string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.CoursePayment{}).
		Where("razorpay_order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":              model.PaymentCompleted,
			"razorpay_payment_id": paymentID,
			"paid_at":             paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormPayments) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CoursePayment{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Update("status", model.PaymentExpired)
	return result.RowsAffected, result.Error
}
