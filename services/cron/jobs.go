package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/skill-training-api/model"
	"go.uber.org/zap"
)

// ExpirePendingPayments marks payment orders that never got verified as expired.
// Enrollment state is not touched.
func (m *CronManager) ExpirePendingPayments() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := m.payments.ExpireStaleOrders(ctx, orderExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to expire orders: %w", err)
	}
	return fmt.Sprintf("Expired %d pending orders", n), nil
}

// CleanupOrphanedAssignments deletes stored files no user references,
// left behind by replaced submissions or failed uploads
func (m *CronManager) CleanupOrphanedAssignments() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	referenced := map[string]bool{}
	for _, role := range []model.Role{model.RoleStudent, model.RoleAdmin} {
		users, err := m.users.ListByRole(ctx, role)
		if err != nil {
			return "", fmt.Errorf("failed to list users: %w", err)
		}
		for _, u := range users {
			for _, ref := range u.Assignments {
				referenced[ref] = true
			}
		}
	}

	files, err := m.files.List(ctx)
	if err != nil {
		return "", err
	}

	cutoff := m.now().Add(-orphanGrace)
	deleted, failed := 0, 0
	for _, f := range files {
		if referenced[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := m.files.Delete(ctx, f.Name); err != nil {
			m.logger.Warn("failed to delete orphaned assignment", zap.String("file", f.Name), zap.Error(err))
			failed++
			continue
		}
		deleted++
	}

	return fmt.Sprintf("Checked %d files, deleted %d, failed %d", len(files), deleted, failed), nil
}
