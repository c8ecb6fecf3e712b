package assistant

import (
	"context"
	"fmt"

	"health-ai/internal/apperr"
	"health-ai/internal/models"
)

// RecordStore is the write side of the diets and meals collections.
type RecordStore interface {
	UserExists(ctx context.Context, id models.UserID) (bool, error)
	UpsertDiet(ctx context.Context, id models.UserID, plan models.Payload) error
	AppendMeal(ctx context.Context, id models.UserID, entry models.Payload) error
}

// Writer is the only component that writes diet and meal records.
type Writer struct {
	store RecordStore
}

func NewWriter(store RecordStore) *Writer {
	return &Writer{store: store}
}

// Persist replaces the diet record for diet plans, appends to the meal log
// for meal entries and does nothing for conversation. The user is looked up
// again here since it may have been removed after the profile read.
func (w *Writer) Persist(ctx context.Context, id models.UserID, resp Response) error {
	switch r := resp.(type) {
	case *Conversation:
		return nil
	case *DietPlan:
		if err := w.requireUser(ctx, id); err != nil {
			return err
		}
		if err := w.store.UpsertDiet(ctx, id, r.Payload); err != nil {
			return fmt.Errorf("upsert diet: %w", err)
		}
		return nil
	case *MealLog:
		if err := w.requireUser(ctx, id); err != nil {
			return err
		}
		if err := w.store.AppendMeal(ctx, id, r.Payload); err != nil {
			return fmt.Errorf("append meal: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unhandled response %T", resp)
	}
}

func (w *Writer) requireUser(ctx context.Context, id models.UserID) error {
	ok, err := w.store.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return apperr.NotFound("No user found with ID %s", id)
	}
	return nil
}
