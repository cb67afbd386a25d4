package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps users, courses and payments as documents. Per-user
// mutations are single-document updates, which MongoDB applies atomically.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	courses  *mongo.Collection
	payments *mongo.Collection
}

type userDocument struct {
	ID               string                       `bson:"_id"`
	Name             string                       `bson:"name"`
	Email            string                       `bson:"email"`
	PasswordHash     string                       `bson:"passwordHash"`
	Role             string                       `bson:"role"`
	EnrolledCourses  []string                     `bson:"enrolledCourses"`
	TrainingProgress map[string]model.DayProgress `bson:"trainingProgress"`
	Assignments      map[string]string            `bson:"assignments"`
	PaymentStatus    map[string]model.PaymentInfo `bson:"paymentStatus"`
	Shortlisted      bool                         `bson:"shortlisted"`
	CreatedAt        time.Time                    `bson:"createdAt"`
	UpdatedAt        time.Time                    `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	doc := userDocument{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		EnrolledCourses:  make([]string, 0, len(u.EnrolledCourses)),
		TrainingProgress: make(map[string]model.DayProgress, len(u.TrainingProgress)),
		Assignments:      make(map[string]string, len(u.Assignments)),
		PaymentStatus:    make(map[string]model.PaymentInfo, len(u.PaymentStatus)),
		Shortlisted:      u.Shortlisted,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	for _, id := range u.EnrolledCourses {
		doc.EnrolledCourses = append(doc.EnrolledCourses, id.String())
	}
	for k, v := range u.TrainingProgress {
		doc.TrainingProgress[k.String()] = v
	}
	for k, v := range u.Assignments {
		doc.Assignments[k.String()] = v
	}
	for k, v := range u.PaymentStatus {
		doc.PaymentStatus[k.String()] = v
	}
	return doc
}

func (d *userDocument) toModel() *model.User {
	u := &model.User{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Role:             model.Role(d.Role),
		EnrolledCourses:  make([]model.CourseID, 0, len(d.EnrolledCourses)),
		TrainingProgress: make(map[model.CourseID]model.DayProgress, len(d.TrainingProgress)),
		Assignments:      make(map[model.CourseID]string, len(d.Assignments)),
		PaymentStatus:    make(map[model.CourseID]model.PaymentInfo, len(d.PaymentStatus)),
		Shortlisted:      d.Shortlisted,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, id := range d.EnrolledCourses {
		u.EnrolledCourses = append(u.EnrolledCourses, model.CourseID(id))
	}
	for k, v := range d.TrainingProgress {
		u.TrainingProgress[model.CourseID(k)] = v
	}
	for k, v := range d.Assignments {
		u.Assignments[model.CourseID(k)] = v
	}
	for k, v := range d.PaymentStatus {
		u.PaymentStatus[model.CourseID(k)] = v
	}
	return u
}

// StartMongo connects to MongoDB and verifies the connection
func StartMongo(env *config.EnviornmentVariable) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(env.MONGODB_URI))
	if err != nil {
		log.Println("Unable to connect to MongoDB:", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("Successfully connected to MongoDB.")

	db := client.Database(env.MONGODB_DATABASE)
	return &MongoStore{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		courses:  db.Collection("courses"),
		payments: db.Collection("course_payments"),
	}, nil
}

// Init ensures the indexes exist. Each index set is idempotent.
func (s *MongoStore) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var problems []string

	if err := ensureIndexes(ctx, s.users, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_role_created")},
	}); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureIndexes(ctx, s.courses, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("idx_active_created")},
	}); err != nil {
		problems = append(problems, "courses: "+err.Error())
	}
	if err := ensureIndexes(ctx, s.payments, []mongo.IndexModel{
		{Keys: bson.D{{Key: "razorpayOrderId", Value: 1}}, Options: options.Index().SetName("uniq_order").SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("idx_status_created")},
	}); err != nil {
		problems = append(problems, "course_payments: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	log.Println("MongoDB indexes ensured")
	return nil
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	log.Println("Closing MongoDB connection...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Users() UserRepository       { return mongoUsers{s.users} }
func (s *MongoStore) Courses() CourseRepository   { return mongoCourses{s.courses} }
func (s *MongoStore) Payments() PaymentRepository { return mongoPayments{s.payments} }

func translateMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

type mongoUsers struct{ c *mongo.Collection }

func (r mongoUsers) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	if _, err := r.c.InsertOne(ctx, newUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r mongoUsers) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toModel(), nil
}

func (r mongoUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r mongoUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r mongoUsers) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	cur, err := r.c.Find(ctx, bson.M{"role": string(role)}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []model.User{}
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, *doc.toModel())
	}
	return users, cur.Err()
}

func (r mongoUsers) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{"role": string(role)})
}

func (r mongoUsers) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toModel(), nil
}

// Enroll runs as a single pipeline update so the enrolled set, payment entry
// and default progress change together.
func (r mongoUsers) Enroll(ctx context.Context, userID string, courseID model.CourseID, payment model.PaymentInfo) (*model.User, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": userID}, enrollPipeline(courseID, payment, time.Now().UTC()))
}

// enrollPipeline adds the course to the set and records the payment. For
// trainingProgress the default comes first in $mergeObjects so that existing
// progress, merged last, wins.
func enrollPipeline(courseID model.CourseID, payment model.PaymentInfo, now time.Time) mongo.Pipeline {
	cid := courseID.String()
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "enrolledCourses", Value: bson.D{{Key: "$setUnion", Value: bson.A{
				ifNull("$enrolledCourses", bson.A{}),
				literal(bson.A{cid}),
			}}}},
			{Key: "paymentStatus", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
				ifNull("$paymentStatus", bson.D{}),
				literal(bson.D{{Key: cid, Value: payment}}),
			}}}},
			{Key: "trainingProgress", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
				literal(bson.D{{Key: cid, Value: model.DayProgress{}}}),
				ifNull("$trainingProgress", bson.D{}),
			}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
}

func ifNull(field string, fallback interface{}) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{field, fallback}}}
}

// literal keeps course ids that start with $ from being read as field paths
func literal(v interface{}) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func (r mongoUsers) SetDayProgress(ctx context.Context, userID string, courseID model.CourseID, day model.Day, completed bool) (*model.User, error) {
	cid := courseID.String()
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": userID, "enrolledCourses": cid},
		bson.M{"$set": bson.M{
			"trainingProgress." + cid + "." + day.Key(): completed,
			"updatedAt": time.Now().UTC(),
		}},
	)
}

func (r mongoUsers) SetAssignment(ctx context.Context, userID string, courseID model.CourseID, fileRef string) (*model.User, error) {
	cid := courseID.String()
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": userID, "enrolledCourses": cid},
		bson.M{"$set": bson.M{
			"assignments." + cid: fileRef,
			"updatedAt":          time.Now().UTC(),
		}},
	)
}

func (r mongoUsers) SetShortlisted(ctx context.Context, userID string, shortlisted bool) (*model.User, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"shortlisted": shortlisted, "updatedAt": time.Now().UTC()}},
	)
}

type mongoCourses struct{ c *mongo.Collection }

func (r mongoCourses) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{})
}

func (r mongoCourses) InsertMany(ctx context.Context, courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(courses))
	for i := range courses {
		c := courses[i]
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		c.UpdatedAt = c.CreatedAt
		docs = append(docs, c)
	}
	_, err := r.c.InsertMany(ctx, docs)
	return err
}

func (r mongoCourses) find(ctx context.Context, filter bson.M) ([]model.Course, error) {
	cur, err := r.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []model.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r mongoCourses) ListActive(ctx context.Context) ([]model.Course, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

func (r mongoCourses) ListAll(ctx context.Context) ([]model.Course, error) {
	return r.find(ctx, bson.M{})
}

func (r mongoCourses) FindActive(ctx context.Context, id model.CourseID) (*model.Course, error) {
	var course model.Course
	if err := r.c.FindOne(ctx, bson.M{"_id": id.String(), "isActive": true}).Decode(&course); err != nil {
		return nil, translateMongoError(err)
	}
	return &course, nil
}

func (r mongoCourses) ListActiveByIDs(ctx context.Context, ids []model.CourseID) ([]model.Course, error) {
	if len(ids) == 0 {
		return []model.Course{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": raw}, "isActive": true})
}

type mongoPayments struct{ c *mongo.Collection }

func (r mongoPayments) Create(ctx context.Context, p *model.CoursePayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.c.InsertOne(ctx, p)
	return err
}

func (r mongoPayments) FindByOrderID(ctx context.Context, orderID string) (*model.CoursePayment, error) {
	var p model.CoursePayment
	if err := r.c.FindOne(ctx, bson.M{"razorpayOrderId": orderID}).Decode(&p); err != nil {
		return nil, translateMongoError(err)
	}
	return &p, nil
}

func (r mongoPayments) MarkCompleted(ctx context.Context, orderID, paymentID string, paidAt time.Time) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"razorpayOrderId": orderID},
		bson.M{"$set": bson.M{
			"status":            model.PaymentCompleted,
			"razorpayPaymentId": paymentID,
			"paidAt":            paidAt,
			"updatedAt":         time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoPayments) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.c.UpdateMany(ctx,
		bson.M{"status": model.PaymentPending, "createdAt": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": model.PaymentExpired, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
