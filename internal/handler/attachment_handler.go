package handler

import (
	"io"
	"net/http"

	"sgo/internal/service"
	"sgo/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	attachments := router.Group("/api/attachments")
	{
		attachments.POST("/upload", h.Upload)
		attachments.GET("/:fileName", h.Download)
	}
}

// Upload
// @Summary      Upload attachment
// @Description  Images, PDF and Word documents up to 5MB. Returns the path to store on the expense.
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File"
// @Success      201   {object}  response.Response{data=service.AttachmentResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/attachments/upload [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxAttachmentSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required and must not exceed 5MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer file.Close()

	res, err := h.attachmentService.Upload(c.Request.Context(), service.AttachmentUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Download
// @Summary      Download attachment
// @Tags         attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        fileName  path  string  true  "Stored file name"
// @Success      200  {file}  file
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/attachments/{fileName} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	rc, contentType, err := h.attachmentService.Open(c.Request.Context(), c.Param("fileName"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "private, max-age=3600")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
