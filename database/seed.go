package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/utils/auth"
)

const (
	defaultAdminEmail    = "admin@thinkacademies.com"
	defaultAdminPassword = "admin123"
)

// SeedConfig controls the default admin account. Empty credentials fall back
// to the built-in defaults unless AllowDefaultAdmin is false.
type SeedConfig struct {
	AdminEmail        string
	AdminPassword     string
	AllowDefaultAdmin bool
}

// Seeder handles database seeding operations
type Seeder struct {
	store  Storage
	config SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(store Storage, config SeedConfig) *Seeder {
	return &Seeder{store: store, config: config}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(ctx context.Context) error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedCourses(ctx); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedAdminUser(ctx); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedCourses inserts the default catalog when no course exists yet
func (s *Seeder) SeedCourses(ctx context.Context) error {
	count, err := s.store.Courses().Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	courses := DefaultCourses()
	if err := s.store.Courses().InsertMany(ctx, courses); err != nil {
		return err
	}

	log.Printf("✅ Created %d default courses\n", len(courses))
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.config.AdminEmail))
	password := s.config.AdminPassword

	if email == "" || password == "" {
		if !s.config.AllowDefaultAdmin {
			log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
			return nil
		}
		email, password = defaultAdminEmail, defaultAdminPassword
	}

	_, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}

	if err := s.store.Users().Create(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// DefaultCourses is the catalog installed on an empty database
func DefaultCourses() []model.Course {
	return []model.Course{
		{
			CourseID:    "digital-marketing",
			Title:       "Digital Marketing",
			Description: "Master the fundamentals of digital marketing including SEO, social media marketing, content strategy, and analytics.",
			Price:       75,
			Duration:    "3 Days",
			TrainingDays: []model.TrainingDay{
				{
					Day:      1,
					Title:    "Introduction to Digital Marketing & SEO",
					Content:  "Learn the basics of digital marketing landscape, SEO fundamentals, keyword research, and on-page optimization techniques.",
					VideoURL: "https://example.com/video1",
				},
				{
					Day:      2,
					Title:    "Social Media Marketing & Content Strategy",
					Content:  "Understand social media platforms, content creation strategies, engagement tactics, and building brand presence online.",
					VideoURL: "https://example.com/video2",
				},
				{
					Day:      3,
					Title:    "Analytics & Campaign Optimization",
					Content:  "Master Google Analytics, conversion tracking, A/B testing, and campaign performance optimization techniques.",
					VideoURL: "https://example.com/video3",
				},
			},
			AssignmentRequired: true,
			IsActive:           true,
		},
		{
			CourseID:    "web-development",
			Title:       "Web Developer Training",
			Description: "Work with real-world Git workflows, build and deploy a full-stack E-Commerce (MERN) application, collaborate effectively in a development team.",
			Price:       75,
			Duration:    "3 Days",
			TrainingDays: []model.TrainingDay{
				{
					Day:      1,
					Title:    "Setup, Git & Frontend Foundation",
					Content:  "Master semantic HTML5, modern CSS3 features, Flexbox, Grid, and responsive design principles for mobile-first development.",
					VideoURL: "https://example.com/video4",
				},
				{
					Day:      2,
					Title:    "Backend, Database & API Integration",
					Content:  "Learn JavaScript fundamentals, ES6+ features, DOM manipulation, event handling, and building interactive web applications.",
					VideoURL: "https://example.com/video5",
				},
				{
					Day:      3,
					Title:    "E-Commerce Project + Deployment",
					Content:  "Introduction to React, components, state management, hooks, and building modern single-page applications.",
					VideoURL: "https://example.com/video6",
				},
			},
			AssignmentRequired: true,
			IsActive:           true,
		},
	}
}
