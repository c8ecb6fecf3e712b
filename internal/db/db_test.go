package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"health-ai/internal/apperr"
	"health-ai/internal/config"
	"health-ai/internal/models"
)

const testUser models.UserID = "64b7f1c2a9e4d3b2c1a0f9e8"

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func completeInfo() *models.PersonalInfo {
	return &models.PersonalInfo{
		Name:   strPtr("Asha"),
		Height: numPtr(170),
		Weight: numPtr(65),
		Age:    numPtr(25),
		Gender: strPtr("female"),
		BFP:    numPtr(22),
	}
}

func TestMemoryProfileRequiresCompleteInfo(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryDB()

	_, err := m.GetProfile(ctx, testUser)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	partial := completeInfo()
	partial.BFP = nil
	m.PutUser(testUser, partial)
	_, err = m.GetProfile(ctx, testUser)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	m.PutUser(testUser, completeInfo())
	p, err := m.GetProfile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, 22.0, p.BFP)
	assert.Equal(t, testUser, p.ID)
}

func TestMemoryDietIsOverwritten(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryDB()

	require.NoError(t, m.UpsertDiet(ctx, testUser, models.Payload{"goal": "fat loss", "old": true}))
	first, err := m.GetDiet(ctx, testUser)
	require.NoError(t, err)

	require.NoError(t, m.UpsertDiet(ctx, testUser, models.Payload{"goal": "muscle gain"}))
	second, err := m.GetDiet(ctx, testUser)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.Payload{"goal": "muscle gain"}, second.AIPlan)
}

func TestMemoryMealsAppendInOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryDB()

	_, err := m.GetMeals(ctx, testUser)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	for _, meal := range []string{"breakfast", "lunch", "dinner"} {
		require.NoError(t, m.AppendMeal(ctx, testUser, models.Payload{"mealType": meal}))
	}

	rec, err := m.GetMeals(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, rec.MealLog, 3)
	assert.Equal(t, "breakfast", rec.MealLog[0]["mealType"])
	assert.Equal(t, "lunch", rec.MealLog[1]["mealType"])
	assert.Equal(t, "dinner", rec.MealLog[2]["mealType"])
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryDB()

	plan := models.Payload{"dailyNutrition": map[string]interface{}{"calories": 1850.0}}
	require.NoError(t, m.UpsertDiet(ctx, testUser, plan))
	plan["dailyNutrition"].(map[string]interface{})["calories"] = 0.0

	rec, err := m.GetDiet(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1850.0, rec.AIPlan["dailyNutrition"].(map[string]interface{})["calories"])
}

func TestMongoUpdates(t *testing.T) {
	entry := models.Payload{"mealType": "lunch"}

	assert.Equal(t, bson.M{"$push": bson.M{"meal_log": bson.M{"mealType": "lunch"}}}, mealUpdate(entry))
	assert.Equal(t, bson.M{"$set": bson.M{"AI_plan": bson.M{"mealType": "lunch"}}}, dietUpdate(entry))
	assert.Equal(t, bson.M{"user_id": testUser.ObjectID()}, byUser(testUser))
	assert.Equal(t, bson.M{"_id": testUser.ObjectID()}, byID(testUser))
}

func TestOpenMemoryAndUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverMemory
	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryDB{}, s)

	cfg.Store.Driver = "cassandra"
	_, err = Open(cfg)
	assert.Error(t, err)
}
