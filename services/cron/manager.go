package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"go.uber.org/zap"
)

const (
	// pending orders older than this are marked expired
	orderExpiry = 24 * time.Hour
	// unreferenced assignment files younger than this are kept
	orphanGrace = 24 * time.Hour
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron     *cron.Cron
	users    database.UserRepository
	payments *services.PaymentService
	files    storage.FileStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewCronManager creates a new cron manager
func NewCronManager(users database.UserRepository, payments *services.PaymentService, files storage.FileStore, logger *zap.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:     c,
		users:    users,
		payments: payments,
		files:    files,
		logger:   logger.Named("cron"),
		now:      time.Now,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	m.logger.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every hour: expire abandoned payment orders
	if _, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.run("expire_pending_payments", m.ExpirePendingPayments)
	}); err != nil {
		return err
	}

	// Daily at 3 AM: remove unreferenced assignment files
	if _, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.run("cleanup_orphaned_assignments", m.CleanupOrphanedAssignments)
	}); err != nil {
		return err
	}

	return nil
}

// run executes a job, logging duration and outcome
func (m *CronManager) run(jobName string, job func() (string, error)) {
	start := m.now()
	m.logger.Info("job started", zap.String("job", jobName))

	msg, err := job()
	if err != nil {
		m.logger.Error("job failed", zap.String("job", jobName), zap.Error(err))
		return
	}

	m.logger.Info("job completed",
		zap.String("job", jobName),
		zap.String("result", msg),
		zap.Duration("took", m.now().Sub(start)))
}
