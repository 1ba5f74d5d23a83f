package auth

import (
	"errors"
	"net/http"

	"github.com/afr-space/core/internal/pkg/response"
	"github.com/afr-space/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc       *Service
	gate      *Gate
	transport *session.Transport
}

func NewHandler(svc *Service, gate *Gate, transport *session.Transport) *Handler {
	return &Handler{svc: svc, gate: gate, transport: transport}
}

// RegisterRoutes mounts the login, session and logout endpoints. throttle
// guards the login route and may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, throttle gin.HandlerFunc) {
	g := rg.Group("/auth")

	login := []gin.HandlerFunc{h.login}
	if throttle != nil {
		login = append([]gin.HandlerFunc{throttle}, login...)
	}
	g.POST("/login", login...)
	g.GET("/session", h.session)
	g.GET("/me", h.session)
	g.POST("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "请求格式错误")
		return
	}

	res, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.UnauthorizedMsg(c, msgInvalidCredentials)
			return
		}
		response.InternalError(c, err)
		return
	}

	h.transport.Attach(c.Writer, res.Token)
	c.JSON(http.StatusOK, loginResponse{OK: true, User: res.User})
}

func (h *Handler) session(c *gin.Context) {
	d := h.gate.Evaluate(c.Request.Context(), c.Request)
	if !d.Authenticated() {
		response.UnauthorizedMsg(c, unauthorizedMessage(d.Reason))
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: d.User})
}

func (h *Handler) logout(c *gin.Context) {
	h.transport.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
