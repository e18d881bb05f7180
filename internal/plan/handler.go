package plan

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

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Training plan not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not permitted for this training plan"})
	case errors.Is(err, ErrMembershipRequired):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "An active membership in your gym is required"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Training plan operation failed"})
	}
}

// Create godoc
// @Summary      Create training plan
// @Description  Premium users create their own plans; gym owners create plans for enrolled members via a membership id.
// @Tags         plan
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePlanRequest  true  "Plan data"
// @Success      201      {object}  TrainingPlan
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /plans [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get godoc
// @Summary      Get training plan
// @Tags         plan
// @Security     BearerAuth
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      403     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /plans/{planID} [get]
func (h *Handler) Get(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	p, perms, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":        p,
		"permissions": perms,
	})
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	plans, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	var req UpdatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) SetVisibility(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	var req SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsVisible == nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "is_visible is required"})
		return
	}

	p, err := h.service.SetVisibility(c.Request.Context(), actor, id, *req.IsVisible)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Training plan deleted"})
}

func (h *Handler) Days(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	days, err := h.service.Days(c.Request.Context(), actor, id)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}
