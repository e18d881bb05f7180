package membership

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymplan/internal/api"
	"gymplan/internal/gym"
	"gymplan/internal/user"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Enroll godoc
// @Summary      Enroll a user into a gym
// @Description  Capacity permitting; promotes the member to premium for the membership window.
// @Tags         membership
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int            true  "Gym ID"
// @Param        request  body      EnrollRequest  true  "Member and validity window"
// @Success      201      {object}  Membership
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /gyms/{gymID}/members [post]
func (h *Handler) Enroll(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req EnrollRequest
	if !api.BindJSON(c, &req) {
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_date must not precede start_date"})
		return
	}

	m, err := h.service.Enroll(c.Request.Context(), actor, gymID, req.UserEmail, start, end)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, m)
	case errors.Is(err, gym.ErrGymNotFound), errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, gym.ErrGymInactive):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "Gym is not active"})
	case errors.Is(err, gym.ErrCapacityExceeded):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "Gym capacity exceeded"})
	case errors.Is(err, ErrOwnerNotEnrollable):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "This account cannot be enrolled as a member"})
	case errors.Is(err, ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "User already enrolled in this gym"})
	case errors.Is(err, ErrNotAuthorized):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not allowed to manage this gym"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Enrollment failed"})
	}
}

// Withdraw godoc
// @Summary      Remove a member from a gym
// @Tags         membership
// @Security     BearerAuth
// @Produce      json
// @Param        gymID  path  int     true  "Gym ID"
// @Param        email  path  string  true  "Member email"
// @Success      200    {object}  Membership
// @Failure      403    {object}  api.ErrorResponse
// @Failure      404    {object}  api.ErrorResponse
// @Router       /gyms/{gymID}/members/{email} [delete]
func (h *Handler) Withdraw(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	m, err := h.service.Withdraw(c.Request.Context(), actor, gymID, c.Param("email"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, m)
	case errors.Is(err, gym.ErrGymNotFound), errors.Is(err, ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotAuthorized):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not allowed to manage this gym"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Withdrawal failed"})
	}
}

// Extend moves a membership's end date; the member's subscription window
// follows it.
func (h *Handler) Extend(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	var req ExtendRequest
	if !api.BindJSON(c, &req) {
		return
	}

	newEnd, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	m, err := h.service.Extend(c.Request.Context(), actor, membershipID, newEnd)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, m)
	case errors.Is(err, ErrMembershipNotFound), errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotAuthorized):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not allowed to manage this gym"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Extension failed"})
	}
}

func (h *Handler) ListByGym(c *gin.Context) {
	actor, ok := user.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	memberships, err := h.service.ListByGym(c.Request.Context(), actor, gymID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, memberships)
	case errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrNotAuthorized):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not allowed to manage this gym"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list members"})
	}
}
