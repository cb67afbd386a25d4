package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services/payment"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPaymentSecret = "rzp_test_secret"

type fakeGateway struct {
	mu     sync.Mutex
	orders []payment.OrderRequest
	err    error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, req)
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", len(g.orders)),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(testPaymentSecret, orderID, paymentID, signature)
}

// steppedClock returns a clock that advances one second per call
func steppedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newSeededStore(t *testing.T) *database.MemoryStore {
	t.Helper()

	store := database.NewMemoryStore()
	store.SetClock(steppedClock())
	require.NoError(t, database.NewSeeder(store, database.SeedConfig{}).SeedCourses(context.Background()))
	return store
}

func createStudent(t *testing.T, store database.Storage, name string) *model.User {
	t.Helper()

	u := &model.User{Name: name, Email: name + "@example.com", Role: model.RoleStudent}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func enroll(t *testing.T, store database.Storage, u *model.User, courseID model.CourseID) *model.User {
	t.Helper()

	now := time.Now()
	updated, err := store.Users().Enroll(context.Background(), u.ID, courseID, model.PaymentInfo{
		Paid: true, PaymentID: "pay_x", OrderID: "order_x", Amount: 75, PaidAt: &now,
	})
	require.NoError(t, err)
	return updated
}

func newLocalFiles(t *testing.T) *storage.LocalStore {
	t.Helper()

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return files
}

func newProgressService(store database.Storage, files storage.FileStore) *ProgressService {
	return NewProgressService(store.Users(), files, zap.NewNop())
}

func zipContent(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("answer.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("assignment answer"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// fileHeader builds a multipart file header as a parsed upload would carry
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="assignment"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["assignment"][0]
}

func boolPtr(b bool) *bool { return &b }
