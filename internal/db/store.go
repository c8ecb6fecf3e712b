package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"health-ai/internal/config"
	"health-ai/internal/models"
)

// Store is implemented by every backend. Lookups of absent records return
// an apperr.KindNotFound error.
type Store interface {
	GetProfile(ctx context.Context, id models.UserID) (*models.Profile, error)
	UserExists(ctx context.Context, id models.UserID) (bool, error)
	GetDiet(ctx context.Context, id models.UserID) (*models.DietRecord, error)
	GetMeals(ctx context.Context, id models.UserID) (*models.MealRecord, error)
	UpsertDiet(ctx context.Context, id models.UserID, plan models.Payload) error
	AppendMeal(ctx context.Context, id models.UserID, entry models.Payload) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MongoDB)(nil)
	_ Store = (*PostgresDB)(nil)
	_ Store = (*MemoryDB)(nil)
)

// newRecordID gives diet and meal records ObjectID-shaped ids on every
// backend.
func newRecordID() string {
	return primitive.NewObjectID().Hex()
}

// Open connects to the backend named by cfg.Store.Driver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		m, err := NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.DriverPostgres:
		p, err := NewPostgresDB(cfg.PostgresDSN(), cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnLifetime)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverMemory:
		return NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
