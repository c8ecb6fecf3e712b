// internal/models/user.go
package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserID is the hex form of a users document ObjectID.
type UserID string

// ParseUserID validates raw as a 24-character hex ObjectID.
func ParseUserID(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if _, err := primitive.ObjectIDFromHex(raw); err != nil {
		return "", fmt.Errorf("invalid user id %q", raw)
	}
	return UserID(strings.ToLower(raw)), nil
}

// ObjectID panics on ids that did not come from ParseUserID.
func (id UserID) ObjectID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		panic(fmt.Sprintf("models: unparsed user id %q", string(id)))
	}
	return oid
}

func (id UserID) String() string {
	return string(id)
}

// PersonalInfo is the personal_info section written by onboarding. Pointer
// fields distinguish "missing" from zero.
type PersonalInfo struct {
	Name   *string  `bson:"name" json:"name"`
	Height *float64 `bson:"height" json:"height"`
	Weight *float64 `bson:"weight" json:"weight"`
	Age    *float64 `bson:"age" json:"age"`
	Gender *string  `bson:"gender" json:"gender"`
	BFP    *float64 `bson:"bfp" json:"bfp"`
}

func (p *PersonalInfo) Complete() bool {
	return p != nil && p.Name != nil && p.Height != nil && p.Weight != nil &&
		p.Age != nil && p.Gender != nil && p.BFP != nil
}

// Profile returns the flattened profile. Callers must check Complete first.
func (p *PersonalInfo) Profile(id UserID) *Profile {
	return &Profile{
		ID:     id,
		Name:   *p.Name,
		Height: *p.Height,
		Weight: *p.Weight,
		Age:    *p.Age,
		Gender: *p.Gender,
		BFP:    *p.BFP,
	}
}

type Profile struct {
	ID     UserID  `json:"-"`
	Name   string  `json:"name"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Age    float64 `json:"age"`
	Gender string  `json:"gender"`
	BFP    float64 `json:"bfp"`
}

// Payload is a model reply exactly as it was decoded.
type Payload map[string]interface{}

type DietRecord struct {
	ID     string  `json:"id"`
	UserID UserID  `json:"user_id"`
	AIPlan Payload `json:"AI_Plan"`
}

type MealRecord struct {
	ID      string    `json:"id"`
	UserID  UserID    `json:"user_id"`
	MealLog []Payload `json:"meal_logs"`
}
