package gym

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymplan/internal/api"
	"gymplan/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateGym godoc
// @Summary      Create gym
// @Tags         gym
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateGymRequest  true  "Gym data"
// @Success      201      {object}  Gym
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req CreateGymRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		if errors.Is(err, ErrNotGymOwner) {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Gym owner role required"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, g)
}

// ListGyms godoc
// @Summary      List active gyms
// @Tags         gym
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Gym
// @Router       /gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

func (h *Handler) GetGym(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load gym"})
		return
	}

	c.JSON(http.StatusOK, g)
}

// IncreaseCapacity godoc
// @Summary      Raise gym member capacity
// @Description  New capacity must be at least the current member count.
// @Tags         gym
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int                      true  "Gym ID"
// @Param        request  body      IncreaseCapacityRequest  true  "New capacity"
// @Success      200      {object}  Gym
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /gyms/{gymID}/capacity [patch]
func (h *Handler) IncreaseCapacity(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req IncreaseCapacityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.IncreaseCapacity(c.Request.Context(), actor, id, req.MaxUsers)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, g)
	case errors.Is(err, ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrNotGymOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Only the gym owner may change capacity"})
	case errors.Is(err, ErrInvalidCapacity):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "New capacity below current member count"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update capacity"})
	}
}

func (h *Handler) DeactivateGym(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	err = h.service.Deactivate(c.Request.Context(), actor, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Gym deactivated"})
	case errors.Is(err, ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrNotGymOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Only the gym owner may deactivate"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate gym"})
	}
}
