package assistant

import (
	"encoding/json"

	"health-ai/internal/apperr"
	"health-ai/internal/models"
)

type ResponseType string

const (
	TypeDietPlan     ResponseType = "diet_plan"
	TypeMealLogging  ResponseType = "meal_logging"
	TypeConversation ResponseType = "conversation"
)

// Response is one of *DietPlan, *MealLog or *Conversation.
type Response interface {
	Type() ResponseType
	// Reply is the body returned to the HTTP caller.
	Reply() interface{}
	sealed()
}

type DietPlan struct {
	Message string
	Plan    map[string]interface{}
	// Payload is the full model document, persisted as-is.
	Payload models.Payload
}

type MealLog struct {
	Message  string
	MealType string
	Items    []interface{}
	Payload  models.Payload
}

type Conversation struct {
	Message string
}

func (*DietPlan) Type() ResponseType     { return TypeDietPlan }
func (*MealLog) Type() ResponseType      { return TypeMealLogging }
func (*Conversation) Type() ResponseType { return TypeConversation }

func (*DietPlan) sealed()     {}
func (*MealLog) sealed()      {}
func (*Conversation) sealed() {}

type DietPlanReply struct {
	Message  string                 `json:"message"`
	DietPlan map[string]interface{} `json:"diet_plan"`
}

type MealLogReply struct {
	Message string         `json:"message"`
	MealLog MealLogSummary `json:"meal_log"`
}

type MealLogSummary struct {
	MealType  string        `json:"meal_type"`
	UserMeals []interface{} `json:"user_meals"`
}

type ConversationReply struct {
	Message string `json:"message"`
}

func (d *DietPlan) Reply() interface{} {
	return DietPlanReply{Message: d.Message, DietPlan: d.Plan}
}

func (m *MealLog) Reply() interface{} {
	return MealLogReply{
		Message: m.Message,
		MealLog: MealLogSummary{MealType: m.MealType, UserMeals: m.Items},
	}
}

func (c *Conversation) Reply() interface{} {
	return ConversationReply{Message: c.Message}
}

// ParseResponse decodes raw model output. The text must be a JSON object as
// returned; fences or surrounding prose are a parse failure. Only the
// discriminator and the top-level keys each variant needs are checked.
func ParseResponse(raw string) (Response, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, apperr.MalformedResponse("AI returned invalid JSON", err)
	}
	if doc == nil {
		return nil, apperr.MalformedResponse("AI returned invalid JSON", nil)
	}

	tag, _ := doc["response_type"].(string)
	switch ResponseType(tag) {
	case TypeDietPlan:
		msg, err := requireString(doc, "message")
		if err != nil {
			return nil, err
		}
		plan, ok := doc["diet_plan"].(map[string]interface{})
		if !ok {
			return nil, missingKey(TypeDietPlan, "diet_plan")
		}
		return &DietPlan{Message: msg, Plan: plan, Payload: doc}, nil

	case TypeMealLogging:
		msg, err := requireString(doc, "message")
		if err != nil {
			return nil, err
		}
		mealType, err := requireString(doc, "mealType")
		if err != nil {
			return nil, err
		}
		items, ok := doc["items"].([]interface{})
		if !ok {
			return nil, missingKey(TypeMealLogging, "items")
		}
		return &MealLog{Message: msg, MealType: mealType, Items: items, Payload: doc}, nil

	case TypeConversation:
		msg, err := requireString(doc, "message")
		if err != nil {
			return nil, err
		}
		return &Conversation{Message: msg}, nil
	}

	return nil, apperr.UnknownResponseType(tag)
}

func requireString(doc map[string]interface{}, key string) (string, error) {
	v, ok := doc[key].(string)
	if !ok {
		tag, _ := doc["response_type"].(string)
		return "", missingKey(ResponseType(tag), key)
	}
	return v, nil
}

func missingKey(t ResponseType, key string) error {
	return apperr.MalformedResponse("AI "+string(t)+" response is missing "+key, nil)
}
