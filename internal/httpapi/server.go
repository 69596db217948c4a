// Package httpapi is the remote entry point into the pipeline and the
// record manager, used by the mobile submission flow.
package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"campuscycle/internal/bins"
	"campuscycle/internal/complaint"
	"campuscycle/internal/domain"
	"campuscycle/internal/metrics"
	"campuscycle/internal/vision"
)

// ImageClassifier is what the handlers need from the vision pipeline.
type ImageClassifier interface {
	ClassifyFile(path string) (vision.Result, error)
}

// Server wires the HTTP surface to the record manager, the bin registry,
// and the shared classifier.
type Server struct {
	manager    *complaint.Manager
	registry   *bins.Registry
	classifier ImageClassifier
	uploadDir  string
}

func NewServer(manager *complaint.Manager, registry *bins.Registry, classifier ImageClassifier, uploadDir string) *Server {
	return &Server{manager: manager, registry: registry, classifier: classifier, uploadDir: uploadDir}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/v1/predict", s.handlePredict)

	router.POST("/v1/complaints", s.handleSubmit)
	router.GET("/v1/complaints", s.handleList)
	router.GET("/v1/complaints/:id", s.handleGet)
	router.GET("/v1/complaints/:id/history", s.handleHistory)
	router.PUT("/v1/complaints/:id/status", s.handleTransition)

	router.GET("/v1/bins", s.handleListBins)
	router.POST("/v1/bins", s.handleRegisterBin)
	router.PUT("/v1/bins/:id/fill", s.handleBinFill)
	router.GET("/v1/bins/:id/history", s.handleBinHistory)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// sessionFrom reads the identity established by the auth collaborator in
// front of this service. Empty headers mean an anonymous caller.
func sessionFrom(c *gin.Context) complaint.Session {
	return complaint.Session{
		UserID:   c.GetHeader("X-User-ID"),
		Username: c.GetHeader("X-Username"),
	}
}

// saveUpload stores the posted image under a fresh uuid name; the caller
// removes it once the prediction is done.
func (s *Server) saveUpload(c *gin.Context) (string, error) {
	_, header, err := c.Request.FormFile("image")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.uploadDir, uuid.NewString())
	if err := c.SaveUploadedFile(header, path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Server) classifyUpload(c *gin.Context) (*vision.Result, error) {
	path, err := s.saveUpload(c)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warnf("[API] Couldn't remove upload %s: %v", path, err)
		}
	}()

	start := time.Now()
	res, err := s.classifier.ClassifyFile(path)
	if err != nil {
		return nil, err
	}
	metrics.InferenceSeconds.Observe(time.Since(start).Seconds())
	metrics.ClassificationsTotal.WithLabelValues(res.Label).Inc()
	return &res, nil
}

func (s *Server) handlePredict(c *gin.Context) {
	if s.classifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier not configured"})
		return
	}
	res, err := s.classifyUpload(c)
	if err != nil {
		if errors.Is(err, vision.ErrInvalidFrame) || errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is missing or not decodable"})
			return
		}
		log.Errorf("[API] Prediction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed - please retry"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSubmit(c *gin.Context) {
	sess := sessionFrom(c)

	req := complaint.SubmitRequest{
		Description: c.PostForm("description"),
		Priority:    domain.Priority(c.PostForm("priority")),
	}

	loc, err := locationFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Location = loc

	// An attached image gets classified, but a pipeline failure must not
	// lose the complaint itself; it is filed without a summary.
	if _, header, err := c.Request.FormFile("image"); err == nil && header != nil && s.classifier != nil {
		if res, err := s.classifyUpload(c); err == nil {
			req.Classification = res
		} else {
			log.Warnf("[API] Classification unavailable for submission: %v", err)
		}
	}

	id, err := s.manager.Submit(c.Request.Context(), sess, req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	metrics.ComplaintsSubmitted.Inc()
	body := gin.H{"id": id}
	if req.Classification != nil {
		body["label"] = req.Classification.Label
		body["confidence"] = req.Classification.Confidence
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) handleList(c *gin.Context) {
	f := complaint.Filter{
		SubmitterID: c.Query("submitter"),
		Status:      domain.Status(c.Query("status")),
	}
	list, err := s.manager.List(c.Request.Context(), f)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": toComplaintViews(list)})
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := s.manager.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toComplaintView(rec))
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	hist, err := s.manager.History(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": toHistoryViews(hist)})
}

func (s *Server) handleTransition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	err := s.manager.Transition(c.Request.Context(), sessionFrom(c), id, domain.Status(body.Status))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": body.Status})
}

func (s *Server) handleListBins(c *gin.Context) {
	list, err := s.registry.List(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bins": list})
}

func (s *Server) handleRegisterBin(c *gin.Context) {
	var body struct {
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Capacity int     `json:"capacity"`
		Zone     string  `json:"zone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bin payload"})
		return
	}
	id, err := s.registry.Register(c.Request.Context(), sessionFrom(c), domain.Bin{
		Location: domain.Coordinate{Lat: body.Lat, Lng: body.Lng},
		Capacity: body.Capacity,
		Zone:     body.Zone,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleBinFill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Level int `json:"level"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fill payload"})
		return
	}
	bin, err := s.registry.RecordFill(c.Request.Context(), sessionFrom(c), id, body.Level)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, bin)
}

func (s *Server) handleBinHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	hist, err := s.registry.History(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": hist})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func locationFromForm(c *gin.Context) (*domain.Coordinate, error) {
	latStr, lngStr := c.PostForm("lat"), c.PostForm("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be provided together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid lat")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errors.New("invalid lng")
	}
	return &domain.Coordinate{Lat: lat, Lng: lng}, nil
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, vision.ErrInvalidFrame):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Errorf("[API] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
