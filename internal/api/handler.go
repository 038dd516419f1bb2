package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-actiondetect/action"
	"github.com/swdee/go-actiondetect/postprocess"
	"github.com/swdee/go-actiondetect/render"
	"gocv.io/x/gocv"
)

// maxFrameSize limits the size of uploaded frames
const maxFrameSize = 20 << 20

var errBadFrame = errors.New("frame could not be decoded")

// Handler serves action detection over HTTP
type Handler struct {
	detector *action.ActionDetector
	renderer *render.Renderer
	logger   *logrus.Logger
}

// NewHandler creates a Handler using the detector and renderer
func NewHandler(det *action.ActionDetector, r *render.Renderer, logger *logrus.Logger) *Handler {
	return &Handler{
		detector: det,
		renderer: r,
		logger:   logger,
	}
}

// detectResponse is the body returned by the detect endpoint
type detectResponse struct {
	Detections postprocess.DetectionGroup `json:"detections"`
	Summary    []postprocess.LabelStats   `json:"summary"`
}

// RegisterRoutes attaches the handler's routes to the router
func (h *Handler) RegisterRoutes(r *gin.Engine) {

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/detect", h.Detect)
	v1.POST("/render", h.Render)
}

// NewRouter returns a gin engine serving the handler
func NewRouter(h *Handler) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.logRequests())

	h.RegisterRoutes(r)

	return r
}

// Health reports the service status and known labels
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"labels": h.detector.Registry().Labels(),
	})
}

// Detect runs action detection on the uploaded frame and returns the
// detections grouped by label
func (h *Handler) Detect(c *gin.Context) {

	group, ok := h.predict(c, nil)

	if !ok {
		return
	}

	c.JSON(http.StatusOK, detectResponse{
		Detections: group,
		Summary:    postprocess.Summarize(group),
	})
}

// Render runs action detection on the uploaded frame and returns it as a
// JPEG with the detections drawn on
func (h *Handler) Render(c *gin.Context) {

	frame := gocv.NewMat()
	defer frame.Close()

	group, ok := h.predict(c, &frame)

	if !ok {
		return
	}

	h.renderer.RenderGroup(render.NewMatCanvas(&frame), group)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)

	if err != nil {
		h.logger.WithError(err).Error("error encoding rendered frame")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error encoding rendered frame"})
		return
	}

	defer buf.Close()

	c.Data(http.StatusOK, "image/jpeg", buf.GetBytes())
}

// predict decodes the uploaded frame, into dst when given, and runs the
// detector on it.  Error responses are written to c and false returned.
func (h *Handler) predict(c *gin.Context, dst *gocv.Mat) (postprocess.DetectionGroup, bool) {

	frame, err := readFrame(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return postprocess.DetectionGroup{}, false
	}

	if dst != nil {
		frame.CopyTo(dst)
	}

	defer frame.Close()

	exclude := parseList(c.DefaultPostForm("exclude", c.Query("exclude")))

	group, err := h.detector.Predict(c.Request.Context(), frame, exclude...)

	if err != nil {
		h.logger.WithError(err).Error("action detection failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return postprocess.DetectionGroup{}, false
	}

	h.logger.WithFields(logrus.Fields{
		"detections": group.Len(),
		"exclude":    exclude,
	}).Debug("frame processed")

	return group, true
}

// readFrame decodes the image in the multipart "frame" field
func readFrame(c *gin.Context) (gocv.Mat, error) {

	fh, err := c.FormFile("frame")

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("missing frame: %w", err)
	}

	if fh.Size > maxFrameSize {
		return gocv.Mat{}, fmt.Errorf("frame is %d bytes, limit is %d", fh.Size, maxFrameSize)
	}

	f, err := fh.Open()

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("error opening frame: %w", err)
	}

	defer f.Close()

	data, err := io.ReadAll(f)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("error reading frame: %w", err)
	}

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", errBadFrame, err)
	}

	if frame.Empty() {
		frame.Close()
		return gocv.Mat{}, errBadFrame
	}

	return frame, nil
}

// parseList splits a comma delimited list dropping blank entries
func parseList(s string) []string {

	out := make([]string, 0)

	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// logRequests logs each request with logrus
func (h *Handler) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Info("request")
	}
}
