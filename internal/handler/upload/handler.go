package upload

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/pkg/blob"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	Upload(ctx context.Context, caller policy.Caller, kind, filename string, data []byte) (string, error)
	Download(ctx context.Context, caller policy.Caller, key string) (*blob.Object, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/" + model.ResourceUploads)
	{
		uploads.POST("", h.Upload)
		uploads.GET("/*key", h.Download)
	}
}

type uploadResponse struct {
	Key string `json:"key"`
}

// Upload takes a multipart form with a "file" part and an optional "kind"
// of images or files.
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, errors.Validation(errors.FieldError{Field: "file", Message: "this field is required"}))
		return
	}

	f, err := header.Open()
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid upload", err))
		return
	}

	kind := c.DefaultPostForm("kind", "files")
	key, err := h.svc.Upload(c.Request.Context(), policy.CallerFrom(c.Request.Context()), kind, header.Filename, data)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, uploadResponse{Key: key})
}

func (h *Handler) Download(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	obj, err := h.svc.Download(c.Request.Context(), policy.CallerFrom(c.Request.Context()), key)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
