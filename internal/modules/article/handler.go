package article

import (
	"errors"

	"github.com/afr-space/core/internal/pkg/pagination"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles article HTTP requests.
type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts article routes. Writes require both authMW and
// editorMW to pass.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, editorMW gin.HandlerFunc) {
	articles := rg.Group("/articles")
	articles.GET("", h.list)
	articles.GET("/:id", h.get)

	authed := articles.Group("", authMW, editorMW)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.DELETE("/:id", h.delete)

	rg.GET("/admin/articles", authMW, editorMW, h.all)
}

// list GET /articles
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	list, pag, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]articleResponse, len(list))
	for i := range list {
		items[i] = toSummary(&list[i])
	}
	response.Paged(c, items, pag)
}

// all GET /admin/articles
func (h *Handler) all(c *gin.Context) {
	list, err := h.svc.All(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]articleResponse, len(list))
	for i := range list {
		items[i] = toSummary(&list[i])
	}
	response.OK(c, items)
}

// get GET /articles/:id
func (h *Handler) get(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.svc.View(ctx, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFoundMsg(c, "文章不存在")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	latest, err := h.svc.Latest(ctx, a.ID, LatestLimit)
	if err != nil {
		h.log.Warn("load latest articles failed", zap.String("id", a.ID), zap.Error(err))
	}
	response.OK(c, detailResponse{articleResponse: toResponse(a), Latest: toLatest(latest)})
}

// create POST /articles
func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("article created", zap.String("id", a.ID), zap.String("slug", a.Slug))
	response.Created(c, toResponse(a))
}

// update PUT /articles/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, toResponse(a))
}

// delete DELETE /articles/:id
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "文章不存在")
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrEmptyTitle):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
