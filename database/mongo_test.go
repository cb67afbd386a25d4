package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUserDocumentRoundTrip(t *testing.T) {
	u := enrolledStudent()

	raw, err := bson.Marshal(newUserDocument(u))
	require.NoError(t, err)
	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toModel()

	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.True(t, got.Shortlisted)
	assert.Equal(t, u.EnrolledCourses, got.EnrolledCourses)
	assert.Equal(t, u.TrainingProgress, got.TrainingProgress)
	assert.Equal(t, u.Assignments, got.Assignments)
	assert.True(t, u.UpdatedAt.Equal(got.UpdatedAt))

	paid := got.PaymentStatus["web-development"]
	assert.Equal(t, "pay_1", paid.PaymentID)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, u.PaymentStatus["web-development"].PaidAt.Equal(*paid.PaidAt))
	assert.Nil(t, got.PaymentStatus["seo"].PaidAt)
}

func TestUserDocumentEmptyCollections(t *testing.T) {
	u := &model.User{ID: "u1", Name: "Ravi", Email: "ravi@example.com", Role: model.RoleStudent}

	raw, err := bson.Marshal(newUserDocument(u))
	require.NoError(t, err)

	// Empty collections are stored as [] and {} so pipeline updates can extend them
	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	for _, key := range []string{"enrolledCourses", "trainingProgress", "assignments", "paymentStatus"} {
		require.Contains(t, stored, key)
		assert.NotNil(t, stored[key], key)
		assert.Empty(t, stored[key], key)
	}

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toModel()
	assert.NotNil(t, got.EnrolledCourses)
	assert.Empty(t, got.EnrolledCourses)
	assert.NotNil(t, got.TrainingProgress)
	assert.NotNil(t, got.Assignments)
	assert.NotNil(t, got.PaymentStatus)
}

func TestEnrollPipelineShape(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	payment := model.PaymentInfo{Paid: true, PaymentID: "pay_1", OrderID: "order_1", Amount: 75}

	pipeline := enrollPipeline("web-development", payment, now)
	require.Len(t, pipeline, 1)
	require.Len(t, pipeline[0], 1)
	assert.Equal(t, "$set", pipeline[0][0].Key)

	set, ok := pipeline[0][0].Value.(bson.D)
	require.True(t, ok)
	fields := set.Map()

	assert.Equal(t, bson.D{{Key: "$setUnion", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$enrolledCourses", bson.A{}}}},
		bson.D{{Key: "$literal", Value: bson.A{"web-development"}}},
	}}}, fields["enrolledCourses"])

	// Later arguments win in $mergeObjects: the new payment replaces the old one
	assert.Equal(t, bson.D{{Key: "$mergeObjects", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$paymentStatus", bson.D{}}}},
		bson.D{{Key: "$literal", Value: bson.D{{Key: "web-development", Value: payment}}}},
	}}}, fields["paymentStatus"])

	// and existing progress replaces the empty default
	assert.Equal(t, bson.D{{Key: "$mergeObjects", Value: bson.A{
		bson.D{{Key: "$literal", Value: bson.D{{Key: "web-development", Value: model.DayProgress{}}}}},
		bson.D{{Key: "$ifNull", Value: bson.A{"$trainingProgress", bson.D{}}}},
	}}}, fields["trainingProgress"])

	assert.Equal(t, now, fields["updatedAt"])

	// The pipeline must encode as an update document
	_, err := bson.Marshal(bson.D{{Key: "u", Value: pipeline}})
	assert.NoError(t, err)
}

// Set RUN_INTEGRATION_TESTS=true with MONGODB_URI pointing at a scratch
// server to run this. It works in a throwaway database.
func TestMongoStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	env, err := config.Get()
	require.NoError(t, err)
	env.MONGODB_DATABASE = "skill_training_test_" + uuid.NewString()[:8]

	store, err := StartMongo(env)
	require.NoError(t, err)
	defer func() {
		_ = store.db.Drop(context.Background())
		_ = store.Close()
	}()
	require.NoError(t, store.Init())

	ctx := context.Background()
	u := &model.User{Name: "Asha", Email: "asha@example.com", Role: model.RoleStudent}
	require.NoError(t, store.Users().Create(ctx, u))
	assert.ErrorIs(t, store.Users().Create(ctx, &model.User{Name: "Dup", Email: u.Email, Role: model.RoleStudent}), ErrDuplicateEmail)

	assertEnrollKeepsProgress(t, store.Users(), u.ID)

	// A document written before the per-course maps existed still enrolls
	_, err = store.users.InsertOne(ctx, bson.D{
		{Key: "_id", Value: "legacy"},
		{Key: "email", Value: "legacy@example.com"},
		{Key: "role", Value: "student"},
	})
	require.NoError(t, err)
	legacy, err := store.Users().Enroll(ctx, "legacy", "seo", model.PaymentInfo{Paid: true, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, []model.CourseID{"seo"}, legacy.EnrolledCourses)
	assert.Equal(t, model.DayProgress{}, legacy.TrainingProgress["seo"])
}
