package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-ai/internal/apperr"
	"health-ai/internal/assistant"
	"health-ai/internal/db"
	"health-ai/internal/models"
	"health-ai/pkg/logger"
)

const userID = "64b7f1c2a9e4d3b2c1a0f9e8"

type recordingDispatcher struct {
	userID  string
	message string
	resp    assistant.Response
	err     error
}

func (r *recordingDispatcher) Handle(_ context.Context, rawUserID, message string) (assistant.Response, error) {
	r.userID, r.message = rawUserID, message
	return r.resp, r.err
}

func newTestBot(d Dispatcher) *TelegramBot {
	name, gender := "Asha", "female"
	h, w, a, b := 170.0, 65.0, 25.0, 22.0
	store := db.NewMemoryDB()
	store.PutUser(userID, &models.PersonalInfo{Name: &name, Height: &h, Weight: &w, Age: &a, Gender: &gender, BFP: &b})

	return &TelegramBot{
		dispatcher: d,
		profiles:   assistant.NewProfiles(store),
		logger:     logger.NewNop(),
		links:      make(map[int64]models.UserID),
	}
}

func TestReplyRequiresLink(t *testing.T) {
	d := &recordingDispatcher{resp: &assistant.Conversation{Message: "hi"}}
	b := newTestBot(d)
	ctx := context.Background()

	assert.Equal(t, notLinkedText, b.reply(ctx, 7, "hello", false, "", ""))
	assert.Empty(t, d.message)

	assert.Equal(t, "That doesn't look like a valid user id.", b.reply(ctx, 7, "/link 12", true, "link", "12"))
	assert.Equal(t, "I couldn't find a completed profile for that user id.",
		b.reply(ctx, 7, "", true, "link", "64b7f1c2a9e4d3b2c1a0f000"))

	assert.Equal(t, "Hi Asha, your profile is linked.", b.reply(ctx, 7, "", true, "link", userID))
	assert.Equal(t, "hi", b.reply(ctx, 7, "hello", false, "", ""))
	assert.Equal(t, userID, d.userID)
	assert.Equal(t, "hello", d.message)

	assert.Equal(t, "Profile unlinked.", b.reply(ctx, 7, "", true, "unlink", ""))
	assert.Equal(t, notLinkedText, b.reply(ctx, 7, "hello again", false, "", ""))
}

func TestReplyDescribesErrors(t *testing.T) {
	d := &recordingDispatcher{err: apperr.MalformedResponse("AI returned invalid JSON", nil)}
	b := newTestBot(d)
	ctx := context.Background()
	require.Equal(t, "Hi Asha, your profile is linked.", b.reply(ctx, 1, "", true, "link", userID))

	assert.Contains(t, b.reply(ctx, 1, "hm", false, "", ""), "didn't understand")

	d.err = apperr.Upstream(assert.AnError)
	assert.Equal(t, failureText, b.reply(ctx, 1, "hm", false, "", ""))
}

func TestHelpCommands(t *testing.T) {
	b := newTestBot(&recordingDispatcher{})
	assert.Equal(t, helpText, b.reply(context.Background(), 1, "/start", true, "start", ""))
	assert.Contains(t, b.reply(context.Background(), 1, "/foo", true, "foo", ""), "Unknown command")
}

func TestFormatResponse(t *testing.T) {
	meal := &assistant.MealLog{
		Message:  "your meal has been logged",
		MealType: "breakfast",
		Items: []interface{}{
			map[string]interface{}{"name": "Idli", "calories": 120.0},
			"garbage",
		},
		Payload: models.Payload{"totalCalories": 320.0},
	}
	assert.Equal(t, "your meal has been logged\n\nbreakfast:\n- Idli (120 kcal)\nTotal: 320 kcal", FormatResponse(meal))

	diet := &assistant.DietPlan{
		Message: "your diet has been created",
		Plan: map[string]interface{}{
			"goal":           "fat loss",
			"dailyNutrition": map[string]interface{}{"calories": 1850.0, "protein": 110.0, "carbs": 260.0, "fats": 55.0},
		},
	}
	out := FormatResponse(diet)
	assert.Contains(t, out, "Daily target: 1850 kcal, protein 110, carbs 260, fats 55")
	assert.Contains(t, out, "Goal: fat loss")

	assert.Equal(t, "hello", FormatResponse(&assistant.Conversation{Message: "hello"}))
}
