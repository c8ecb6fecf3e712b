package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"health-ai/internal/apperr"
	"health-ai/internal/assistant"
	"health-ai/internal/db"
	"health-ai/internal/models"
	"health-ai/pkg/logger"
)

type Handlers struct {
	store      db.Store
	profiles   *assistant.Profiles
	dispatcher *assistant.Dispatcher
	logger     *logger.Logger
}

func NewHandlers(store db.Store, profiles *assistant.Profiles, dispatcher *assistant.Dispatcher, logger *logger.Logger) *Handlers {
	return &Handlers{
		store:      store,
		profiles:   profiles,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
}

type userResponse struct {
	Name   string  `json:"name"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Age    float64 `json:"age"`
	Gender string  `json:"gender"`
	BFP    float64 `json:"bfp"`
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.KindOf(err).Status(), gin.H{"detail": apperr.Detail(err)})
}

func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("Store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

// GetUser handles GET /user?id=
func (h *Handlers) GetUser(c *gin.Context) {
	profile, err := h.profiles.Lookup(c.Request.Context(), c.Query("id"))
	if err != nil {
		h.logStoreError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		Name:   profile.Name,
		Height: profile.Height,
		Weight: profile.Weight,
		Age:    profile.Age,
		Gender: profile.Gender,
		BFP:    profile.BFP,
	})
}

// GetDiet handles GET /diet?id=
func (h *Handlers) GetDiet(c *gin.Context) {
	id, err := models.ParseUserID(c.Query("id"))
	if err != nil {
		respondError(c, apperr.InvalidIdentifier(err))
		return
	}

	rec, err := h.store.GetDiet(c.Request.Context(), id)
	if err != nil {
		h.logStoreError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetMeals handles GET /meals?id=. An empty log is reported like a missing
// one.
func (h *Handlers) GetMeals(c *gin.Context) {
	id, err := models.ParseUserID(c.Query("id"))
	if err != nil {
		respondError(c, apperr.InvalidIdentifier(err))
		return
	}

	rec, err := h.store.GetMeals(c.Request.Context(), id)
	if err != nil {
		h.logStoreError(err)
		respondError(c, err)
		return
	}
	if len(rec.MealLog) == 0 {
		respondError(c, apperr.NotFound("No meals logged"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Chat handles POST /ai and the older POST /health_ai.
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.BadRequest(err))
		return
	}

	resp, err := h.dispatcher.Handle(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Reply())
}

func (h *Handlers) logStoreError(err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("Store read failed", "error", err)
	}
}
