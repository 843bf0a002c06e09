package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

// maxPhotoBytes caps an uploaded vehicle picture.
const maxPhotoBytes = 10 << 20

type Handler struct {
	service vehicle.Service
	photos  *vehicle.Photos
}

func NewHandler(service vehicle.Service, photos *vehicle.Photos) *Handler {
	return &Handler{service: service, photos: photos}
}

func (h *Handler) List(c *gin.Context) {
	vehicles, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		items[i] = NewVehicleResponse(v)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewVehicleResponse(v))
}

type photoRequest struct {
	Name string `uri:"name" binding:"required"`
}

// POST /v1/vehicles/:id/photo
func (h *Handler) UploadPhoto(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required", err)
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read uploaded file", err)
		return
	}
	defer src.Close()

	v, err := h.photos.Upload(c.Request.Context(), req.ID, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewVehicleResponse(v))
}

// GET /v1/vehicles/photos/:name
func (h *Handler) ServePhoto(c *gin.Context) {
	var req photoRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	stream, err := h.photos.Open(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Response already started
		return
	}
}
