package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type BlockService interface {
	Block(ctx context.Context, caller policy.Caller, patientID uuid.UUID) (*model.Blocklist, error)
}

// Handler serves the patient routes beyond plain CRUD.
type Handler struct {
	svc BlockService
}

func NewHandler(svc BlockService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/" + model.ResourcePatients)
	{
		patients.POST("/:id/block", h.BlockPatient)
	}
}

func (h *Handler) BlockPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("patient", err))
		return
	}

	entry, err := h.svc.Block(c.Request.Context(), policy.CallerFrom(c.Request.Context()), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, entry)
}
