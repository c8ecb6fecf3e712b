package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"health-ai/internal/models"
)

const (
	usersCollection = "users"
	dietsCollection = "diets"
	mealsCollection = "meals"
)

type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoDB(uri, database string) (*MongoDB, error) {
	// Nested documents decode to maps so stored plans encode back to plain
	// JSON objects.
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoDB{client: client, db: client.Database(database)}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

type userDocument struct {
	ID           primitive.ObjectID   `bson:"_id"`
	PersonalInfo *models.PersonalInfo `bson:"personal_info"`
}

type dietDocument struct {
	ID     primitive.ObjectID `bson:"_id"`
	UserID primitive.ObjectID `bson:"user_id"`
	AIPlan bson.M             `bson:"AI_plan"`
}

type mealDocument struct {
	ID      primitive.ObjectID `bson:"_id"`
	UserID  primitive.ObjectID `bson:"user_id"`
	MealLog []bson.M           `bson:"meal_log"`
}

func (m *MongoDB) GetProfile(ctx context.Context, id models.UserID) (*models.Profile, error) {
	var doc userDocument
	err := m.db.Collection(usersCollection).FindOne(ctx, byID(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !doc.PersonalInfo.Complete() {
		return nil, errProfileNotFound
	}
	return doc.PersonalInfo.Profile(id), nil
}

func (m *MongoDB) UserExists(ctx context.Context, id models.UserID) (bool, error) {
	n, err := m.db.Collection(usersCollection).CountDocuments(ctx, byID(id), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return n > 0, nil
}

func (m *MongoDB) GetDiet(ctx context.Context, id models.UserID) (*models.DietRecord, error) {
	var doc dietDocument
	err := m.db.Collection(dietsCollection).FindOne(ctx, byUser(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errDietNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diet: %w", err)
	}
	return &models.DietRecord{
		ID:     doc.ID.Hex(),
		UserID: models.UserID(doc.UserID.Hex()),
		AIPlan: models.Payload(doc.AIPlan),
	}, nil
}

func (m *MongoDB) GetMeals(ctx context.Context, id models.UserID) (*models.MealRecord, error) {
	var doc mealDocument
	err := m.db.Collection(mealsCollection).FindOne(ctx, byUser(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errMealsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	rec := &models.MealRecord{
		ID:      doc.ID.Hex(),
		UserID:  models.UserID(doc.UserID.Hex()),
		MealLog: make([]models.Payload, 0, len(doc.MealLog)),
	}
	for _, entry := range doc.MealLog {
		rec.MealLog = append(rec.MealLog, models.Payload(entry))
	}
	return rec, nil
}

func (m *MongoDB) UpsertDiet(ctx context.Context, id models.UserID, plan models.Payload) error {
	_, err := m.db.Collection(dietsCollection).UpdateOne(ctx, byUser(id), dietUpdate(plan), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert diet: %w", err)
	}
	return nil
}

func (m *MongoDB) AppendMeal(ctx context.Context, id models.UserID, entry models.Payload) error {
	_, err := m.db.Collection(mealsCollection).UpdateOne(ctx, byUser(id), mealUpdate(entry), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append meal: %w", err)
	}
	return nil
}

func byID(id models.UserID) bson.M {
	return bson.M{"_id": id.ObjectID()}
}

func byUser(id models.UserID) bson.M {
	return bson.M{"user_id": id.ObjectID()}
}

// dietUpdate replaces the whole plan; older plans are not kept.
func dietUpdate(plan models.Payload) bson.M {
	return bson.M{"$set": bson.M{"AI_plan": bson.M(plan)}}
}

// mealUpdate appends server-side so concurrent log calls never drop an
// entry.
func mealUpdate(entry models.Payload) bson.M {
	return bson.M{"$push": bson.M{"meal_log": bson.M(entry)}}
}
