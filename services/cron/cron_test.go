package cron

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanupOrphanedAssignments(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	dir := t.TempDir()
	files, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	u := &model.User{Name: "asha", Email: "asha@example.com", Role: model.RoleStudent}
	require.NoError(t, store.Users().Create(ctx, u))
	_, err = store.Users().Enroll(ctx, u.ID, "web-development", model.PaymentInfo{Paid: true})
	require.NoError(t, err)
	_, err = store.Users().SetAssignment(ctx, u.ID, "web-development", "kept.pdf")
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"kept.pdf", "orphan.pdf", "fresh.pdf"} {
		_, err := files.Save(ctx, name, bytes.NewReader([]byte("x")), 1, "application/pdf")
		require.NoError(t, err)
	}
	require.NoError(t, os.Chtimes(filepath.Join(dir, "kept.pdf"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "orphan.pdf"), old, old))

	payments := services.NewPaymentService(store, nil, services.PaymentConfig{}, zap.NewNop())
	m := NewCronManager(store.Users(), payments, files, zap.NewNop())

	msg, err := m.CleanupOrphanedAssignments()
	require.NoError(t, err)
	assert.Equal(t, "Checked 3 files, deleted 1, failed 0", msg)

	remaining, err := files.List(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, f := range remaining {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"kept.pdf", "fresh.pdf"}, names)
}

func TestExpirePendingPayments(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	store.SetClock(func() time.Time { return time.Now().Add(-48 * time.Hour) })
	require.NoError(t, store.Payments().Create(ctx, &model.CoursePayment{
		UserID: "u1", CourseID: "web-development", RazorpayOrderID: "order_1",
	}))

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	payments := services.NewPaymentService(store, nil, services.PaymentConfig{}, zap.NewNop())
	m := NewCronManager(store.Users(), payments, files, zap.NewNop())

	msg, err := m.ExpirePendingPayments()
	require.NoError(t, err)
	assert.Equal(t, "Expired 1 pending orders", msg)

	p, err := store.Payments().FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentExpired, p.Status)
}

func TestRegisterJobs(t *testing.T) {
	store := database.NewMemoryStore()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	payments := services.NewPaymentService(store, nil, services.PaymentConfig{}, zap.NewNop())

	m := NewCronManager(store.Users(), payments, files, zap.NewNop())
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 2)
}
