package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/keris/scholar-backend/internal/export"
	"github.com/keris/scholar-backend/internal/model"
	"github.com/keris/scholar-backend/internal/response"
	"github.com/keris/scholar-backend/internal/service"
	"github.com/keris/scholar-backend/internal/validator"
)

const exportFilename = "scholars.xlsx"

// idParam is the :id path parameter shared by record and sponsor routes.
type idParam struct {
	ID string `uri:"id" binding:"required,mongodb"`
}

// scholarForm is the body of create and update requests, sent either as
// multipart/form-data or as JSON.
type scholarForm struct {
	Name        string   `form:"name" json:"name"`
	Email       string   `form:"email" json:"email"`
	IGAcc       string   `form:"ig_acc" json:"ig_acc"`
	About       string   `form:"about" json:"about"`
	Sponsor     string   `form:"sponsor" json:"sponsor"`
	Major       textList `form:"major" json:"major"`
	Institution textList `form:"institution" json:"institution"`
	ImageAction string   `form:"imageAction" json:"imageAction"`
}

func (f scholarForm) fields() model.ScholarFields {
	return model.ScholarFields{
		Name:        f.Name,
		Email:       f.Email,
		IGAcc:       f.IGAcc,
		About:       f.About,
		Sponsor:     f.Sponsor,
		Major:       []string(f.Major),
		Institution: []string(f.Institution),
	}
}

// textList is a repeatable form field. In JSON it accepts a single string or
// a list of strings.
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = textList{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("must be a string or a list of strings")
	}
	*l = many
	return nil
}

// ScholarHandler handles the /record endpoints.
type ScholarHandler struct {
	scholarService *service.ScholarService
	maxUpload      int64
}

// NewScholarHandler creates a new ScholarHandler. Images larger than
// maxUpload bytes are rejected with 413.
func NewScholarHandler(scholarService *service.ScholarService, maxUpload int64) *ScholarHandler {
	return &ScholarHandler{scholarService: scholarService, maxUpload: maxUpload}
}

// List godoc
// GET /record/
func (h *ScholarHandler) List(c *gin.Context) {
	scholars, err := h.scholarService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, scholars)
}

// Get godoc
// GET /record/:id
func (h *ScholarHandler) Get(c *gin.Context) {
	var p idParam
	if fields := validator.BindURI(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	scholar, err := h.scholarService.GetByID(c.Request.Context(), p.ID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, scholar)
}

// Create godoc
// POST /record/
// Accepts multipart/form-data with an optional "image" file, or a JSON body.
func (h *ScholarHandler) Create(c *gin.Context) {
	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	result, err := h.scholarService.Create(c.Request.Context(), form.fields(), image.upload())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Update godoc
// PATCH /record/:id
// Only non-empty fields are written. imageAction=remove clears the image
// unless a new one is uploaded in the same request.
func (h *ScholarHandler) Update(c *gin.Context) {
	var p idParam
	if fields := validator.BindURI(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	form, image, ok := h.bindForm(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	result, err := h.scholarService.Update(c.Request.Context(), p.ID, form.fields(), image.upload(), form.ImageAction)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Delete godoc
// DELETE /record/:id
func (h *ScholarHandler) Delete(c *gin.Context) {
	var p idParam
	if fields := validator.BindURI(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	if err := h.scholarService.Delete(c.Request.Context(), p.ID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// Export godoc
// GET /record/export
// Downloads every record as an XLSX workbook.
func (h *ScholarHandler) Export(c *gin.Context) {
	scholars, err := h.scholarService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteScholars(&buf, scholars); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Attachment(c, exportFilename, export.ContentType, buf.Bytes())
}

// bindForm binds a JSON or form body and, for multipart requests, the
// optional image part. It writes the error response itself and reports false
// when the request must stop.
func (h *ScholarHandler) bindForm(c *gin.Context) (scholarForm, *formImage, bool) {
	var form scholarForm

	var b binding.Binding = binding.Form
	if c.ContentType() == binding.MIMEJSON {
		b = binding.JSON
	}
	if err := c.ShouldBindWith(&form, b); err != nil {
		if isTooLarge(err) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		} else {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		}
		return form, nil, false
	}

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return form, nil, true
	}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil, true
	case err != nil:
		if isTooLarge(err) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		} else {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		}
		return form, nil, false
	}

	if h.maxUpload > 0 && header.Size > h.maxUpload {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return form, nil, false
	}

	img, err := openFormImage(header)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return form, nil, false
	}
	return form, img, true
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
