package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"health-ai/internal/models"
)

// PostgresDB keeps the same three record kinds as JSONB rows, for
// deployments without MongoDB.
type PostgresDB struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    personal_info JSONB
);
CREATE TABLE IF NOT EXISTS diets (
    id         TEXT NOT NULL,
    user_id    TEXT PRIMARY KEY,
    ai_plan    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS meals (
    id         TEXT NOT NULL,
    user_id    TEXT PRIMARY KEY,
    meal_log   JSONB NOT NULL DEFAULT '[]'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func NewPostgresDB(dsn string, maxOpenConns, maxIdleConns int, connLifetime time.Duration) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(maxOpenConns)
	poolConfig.MinConns = int32(maxIdleConns)
	poolConfig.MaxConnLifetime = connLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close(context.Context) error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *PostgresDB) GetProfile(ctx context.Context, id models.UserID) (*models.Profile, error) {
	query := `
        SELECT personal_info
        FROM users
        WHERE id = $1
    `

	var raw []byte
	err := db.pool.QueryRow(ctx, query, id.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(raw) == 0 {
		return nil, errProfileNotFound
	}

	var info models.PersonalInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to decode personal_info: %w", err)
	}
	if !info.Complete() {
		return nil, errProfileNotFound
	}
	return info.Profile(id), nil
}

func (db *PostgresDB) UserExists(ctx context.Context, id models.UserID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := db.pool.QueryRow(ctx, query, id.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (db *PostgresDB) GetDiet(ctx context.Context, id models.UserID) (*models.DietRecord, error) {
	query := `
        SELECT id, ai_plan
        FROM diets
        WHERE user_id = $1
    `

	rec := models.DietRecord{UserID: id}
	var raw []byte
	err := db.pool.QueryRow(ctx, query, id.String()).Scan(&rec.ID, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errDietNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diet: %w", err)
	}
	if err := json.Unmarshal(raw, &rec.AIPlan); err != nil {
		return nil, fmt.Errorf("failed to decode diet: %w", err)
	}
	return &rec, nil
}

func (db *PostgresDB) GetMeals(ctx context.Context, id models.UserID) (*models.MealRecord, error) {
	query := `
        SELECT id, meal_log
        FROM meals
        WHERE user_id = $1
    `

	rec := models.MealRecord{UserID: id}
	var raw []byte
	err := db.pool.QueryRow(ctx, query, id.String()).Scan(&rec.ID, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errMealsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	if err := json.Unmarshal(raw, &rec.MealLog); err != nil {
		return nil, fmt.Errorf("failed to decode meals: %w", err)
	}
	return &rec, nil
}

func (db *PostgresDB) UpsertDiet(ctx context.Context, id models.UserID, plan models.Payload) error {
	query := `
        INSERT INTO diets (id, user_id, ai_plan)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (user_id) DO UPDATE
        SET ai_plan = EXCLUDED.ai_plan, updated_at = NOW()
    `

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode diet: %w", err)
	}
	_, err = db.pool.Exec(ctx, query, newRecordID(), id.String(), string(data))
	return err
}

// AppendMeal concatenates inside the UPDATE so two concurrent appends for the
// same user both land.
func (db *PostgresDB) AppendMeal(ctx context.Context, id models.UserID, entry models.Payload) error {
	query := `
        INSERT INTO meals (id, user_id, meal_log)
        VALUES ($1, $2, jsonb_build_array($3::jsonb))
        ON CONFLICT (user_id) DO UPDATE
        SET meal_log = meals.meal_log || EXCLUDED.meal_log, updated_at = NOW()
    `

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode meal: %w", err)
	}
	_, err = db.pool.Exec(ctx, query, newRecordID(), id.String(), string(data))
	return err
}
