package user

import (
	"errors"

	"github.com/afr-space/core/internal/middleware"
	"github.com/afr-space/core/internal/pkg/password"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the password endpoint for any signed-in user and
// the user administration endpoints for admins.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	rg.POST("/auth/password", authMW, h.changePassword)

	g := rg.Group("/users", authMW, adminMW)
	g.GET("", h.list)
	g.PATCH("/:id/role", h.setRole)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), dto.Current, dto.Next)
	switch {
	case err == nil:
		response.OK(c, gin.H{"ok": true})
	case errors.Is(err, ErrWrongPassword):
		response.BadRequest(c, "当前密码错误")
	case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrTooLong):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Unauthorized(c)
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) list(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	response.OK(c, out)
}

func (h *Handler) setRole(c *gin.Context) {
	var dto SetRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.SetRole(c.Request.Context(), c.Param("id"), dto.Role)
	switch {
	case err == nil:
		response.OK(c, toResponse(u))
	case errors.Is(err, ErrInvalidRole):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c)
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	switch {
	case err == nil:
		response.NoContent(c)
	case errors.Is(err, ErrSelfDelete):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c)
	default:
		response.InternalError(c, err)
	}
}
