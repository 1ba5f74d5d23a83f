package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Handler struct {
	store Storage
	log   *zap.Logger
	now   func() time.Time
}

// NewHandler creates the upload handler. A nil store makes every upload
// answer 503.
func NewHandler(store Storage, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, log: log, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, editorMW gin.HandlerFunc) {
	rg.POST("/admin/uploads", authMW, editorMW, h.upload)
}

// upload POST /admin/uploads
func (h *Handler) upload(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, ErrNotConfigured.Error())
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "文件过大")
			return
		}
		response.BadRequest(c, "missing file")
		return
	}
	if fh.Size > MaxImageSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "文件过大")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if len(body) > MaxImageSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "文件过大")
		return
	}

	contentType := http.DetectContentType(body)
	ext, ok := imageExts[contentType]
	if !ok {
		response.Error(c, http.StatusUnsupportedMediaType, "只支持图片文件")
		return
	}
	if orig := strings.ToLower(filepath.Ext(fh.Filename)); orig == ".jpeg" && ext == ".jpg" {
		ext = orig
	}

	key := ObjectKey(h.now(), ext)
	url, err := h.store.Put(c.Request.Context(), key, contentType, body)
	if err != nil {
		h.log.Error("upload cover failed", zap.String("key", key), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	h.log.Info("cover uploaded", zap.String("key", key), zap.Int("bytes", len(body)))
	response.OK(c, gin.H{"url": url})
}

// ObjectKey places a new cover under covers/YYYY/MM/.
func ObjectKey(now time.Time, ext string) string {
	return fmt.Sprintf("covers/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
