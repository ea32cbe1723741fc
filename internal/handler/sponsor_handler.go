package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keris/scholar-backend/internal/response"
	"github.com/keris/scholar-backend/internal/service"
	"github.com/keris/scholar-backend/internal/validator"
)

// SponsorHandler serves the read-only sponsor routes.
type SponsorHandler struct {
	sponsorService *service.SponsorService
}

func NewSponsorHandler(sponsorService *service.SponsorService) *SponsorHandler {
	return &SponsorHandler{sponsorService: sponsorService}
}

// List godoc
// GET /record/sponsors
func (h *SponsorHandler) List(c *gin.Context) {
	sponsors, err := h.sponsorService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, sponsors)
}

// Get godoc
// GET /record/sponsors/:id
func (h *SponsorHandler) Get(c *gin.Context) {
	var p idParam
	if fields := validator.BindURI(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	sponsor, err := h.sponsorService.GetByID(c.Request.Context(), p.ID)
	if errors.Is(err, service.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrSponsorNotFound)
		return
	}
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, sponsor)
}
