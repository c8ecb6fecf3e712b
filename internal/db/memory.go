package db

import (
	"context"
	"encoding/json"
	"sync"

	"health-ai/internal/apperr"
	"health-ai/internal/models"
)

// MemoryDB keeps everything in process. Selected with Store.Driver=memory
// for local runs, and used by tests.
type MemoryDB struct {
	mu    sync.RWMutex
	users map[models.UserID]*models.PersonalInfo
	diets map[models.UserID]*models.DietRecord
	meals map[models.UserID]*models.MealRecord
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users: make(map[models.UserID]*models.PersonalInfo),
		diets: make(map[models.UserID]*models.DietRecord),
		meals: make(map[models.UserID]*models.MealRecord),
	}
}

// PutUser stores a user document as onboarding would. info may be nil or
// partial to model an unfinished profile.
func (m *MemoryDB) PutUser(id models.UserID, info *models.PersonalInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = info
}

func (m *MemoryDB) DeleteUser(id models.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *MemoryDB) GetProfile(_ context.Context, id models.UserID) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.users[id]
	if !ok || !info.Complete() {
		return nil, errProfileNotFound
	}
	return info.Profile(id), nil
}

func (m *MemoryDB) UserExists(_ context.Context, id models.UserID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *MemoryDB) GetDiet(_ context.Context, id models.UserID) (*models.DietRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.diets[id]
	if !ok {
		return nil, errDietNotFound
	}
	return &models.DietRecord{ID: rec.ID, UserID: rec.UserID, AIPlan: clonePayload(rec.AIPlan)}, nil
}

func (m *MemoryDB) GetMeals(_ context.Context, id models.UserID) (*models.MealRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.meals[id]
	if !ok {
		return nil, errMealsNotFound
	}
	out := &models.MealRecord{ID: rec.ID, UserID: rec.UserID, MealLog: make([]models.Payload, 0, len(rec.MealLog))}
	for _, entry := range rec.MealLog {
		out.MealLog = append(out.MealLog, clonePayload(entry))
	}
	return out, nil
}

func (m *MemoryDB) UpsertDiet(_ context.Context, id models.UserID, plan models.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.diets[id]
	if !ok {
		rec = &models.DietRecord{ID: newRecordID(), UserID: id}
		m.diets[id] = rec
	}
	rec.AIPlan = clonePayload(plan)
	return nil
}

func (m *MemoryDB) AppendMeal(_ context.Context, id models.UserID, entry models.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.meals[id]
	if !ok {
		rec = &models.MealRecord{ID: newRecordID(), UserID: id}
		m.meals[id] = rec
	}
	rec.MealLog = append(rec.MealLog, clonePayload(entry))
	return nil
}

func (m *MemoryDB) Ping(context.Context) error  { return nil }
func (m *MemoryDB) Close(context.Context) error { return nil }

// clonePayload deep-copies through JSON so callers never share nested maps
// with the store, which is what a real round trip gives them too.
func clonePayload(p models.Payload) models.Payload {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return p
	}
	var out models.Payload
	if err := json.Unmarshal(data, &out); err != nil {
		return p
	}
	return out
}

var (
	errProfileNotFound = apperr.NotFound("User not found or profile not completed")
	errDietNotFound    = apperr.NotFound("Diet not found")
	errMealsNotFound   = apperr.NotFound("Meals not found")
)
