package analysis

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/shared/server/middleware"
	"tirescan-backend/internal/shared/server/respond"
	"tirescan-backend/internal/vision"
)

const (
	maxImageSize   = 10 << 20 // 10MB
	maxRequestSize = maxImageSize + 1<<20
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group. Extra
// handlers (such as a rate limiter) run before the analyze handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, extra...), h.analyze)
	rg.POST("/analyze", handlers...)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	in, err := readImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	in.RequestID = middleware.RequestIDFromContext(c)

	out, err := h.Svc.Analyze(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("analysisId", out.ID)
	respond.OK(c, out)
}

// readImage returns an empty Input when no image part was sent so the
// service can report configuration errors first.
func readImage(c *gin.Context) (Input, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Input{}, ErrImageTooLarge
		}
		return Input{}, nil
	}
	if fileHeader.Size > maxImageSize {
		return Input{}, ErrImageTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return Input{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return Input{}, err
	}
	if len(data) > maxImageSize {
		return Input{}, ErrImageTooLarge
	}
	mimeType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return Input{
		Image:    data,
		MimeType: mimeType,
		FileName: fileHeader.Filename,
	}, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vision.ErrMissingCredential):
		respond.Error(c, http.StatusInternalServerError, respond.CodeConfiguration, "Server missing vision API credential")
	case errors.Is(err, ErrNoImage):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Missing image")
	case errors.Is(err, ErrImageTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, "image must be 10MB or smaller")
	case errors.Is(err, ErrUpstreamTimeout):
		respond.Error(c, http.StatusGatewayTimeout, respond.CodeUpstreamTimeout, "vision provider timed out")
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "vision provider request failed")
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to analyze image")
	}
}
