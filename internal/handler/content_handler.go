package handler

import (
	"io"
	"net/http"

	"chatwave/internal/services"
	"chatwave/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 32 << 20

type ContentHandler struct {
	service *services.ContentService
}

func NewContentHandler(service *services.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// Upload accepts the bytes, registers the WAITING record, and returns
// immediately. The SUCCESS or FAILED transition arrives on the event stream.
func (h *ContentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file is required", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("file too large", "INVALID_REQUEST"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("failed to read file", "INVALID_REQUEST"))
		return
	}

	meta, err := h.service.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusAccepted, httpdto.NewSuccessResponse(meta))
}

func (h *ContentHandler) Get(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid content id", "INVALID_REQUEST"))
		return
	}

	meta, err := h.service.GetByID(c.Request.Context(), contentID)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(meta))
}

func (h *ContentHandler) Download(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid content id", "INVALID_REQUEST"))
		return
	}

	url, err := h.service.DownloadURL(c.Request.Context(), contentID)
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.Redirect(http.StatusFound, url)
}
