package transport

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go-vision-proxy/internal/config"
	apperrors "go-vision-proxy/internal/errors"
	"go-vision-proxy/internal/logger"
	"go-vision-proxy/internal/observer"
	"go-vision-proxy/internal/service"
	"go-vision-proxy/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// Services bundles what the router needs; Metrics may be nil.
type Services struct {
	Analysis service.ImageAnalysisService
	Prompt   service.PromptService
	Metrics  *observer.MetricsObserver
}

func NewHandler(svc Services, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		requestID(),
		accessLog(),
		gin.Recovery(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck(svc.Metrics, cfg))
	r.POST("/analyze", analyzeImage(svc.Analysis))
	r.POST("/api/ai", generateText(svc.Prompt))

	registerAppShell(r, cfg.TemplateDir, cfg.StaticDir)

	return r
}

// analyzeImage handles the multipart upload route.
func analyzeImage(svc service.ImageAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.CheckConfigured(c.Request.Context()); err != nil {
			_ = c.Error(err)
			return
		}

		var req models.AnalysisRequest
		fileHeader, err := c.FormFile("image")
		switch {
		case err == nil:
			file, err := fileHeader.Open()
			if err != nil {
				_ = c.Error(apperrors.NewInternalError("failed to open upload", err))
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				_ = c.Error(apperrors.NewInternalError("failed to read upload", err))
				return
			}
			req.Image = data
			req.Filename = fileHeader.Filename
		case isBodyTooLarge(err):
			_ = c.Error(apperrors.NewPayloadTooLargeError("request body too large", err))
			return
		default:
			// Missing field or not a multipart body: leave Image nil and
			// let the service report it in the configured locale.
			logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Debug("No image in form")
		}

		if prompt, ok := c.GetPostForm("prompt"); ok {
			req.Prompt = &prompt
		}

		resp, err := svc.AnalyzeImage(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// generateText handles the JSON prompt proxy route.
func generateText(svc service.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The key is checked before the body is touched.
		if err := svc.CheckConfigured(c.Request.Context()); err != nil {
			_ = c.Error(err)
			return
		}

		var raw models.RawPromptRequest
		if err := c.ShouldBindJSON(&raw); err != nil {
			if isBodyTooLarge(err) {
				_ = c.Error(apperrors.NewPayloadTooLargeError("request body too large", err))
				return
			}
			_ = c.Error(apperrors.NewValidationError("invalid JSON body", err))
			return
		}
		if raw == nil {
			_ = c.Error(apperrors.NewValidationError("invalid JSON body", nil))
			return
		}

		// Mistyped fields surface as provider errors.
		req, err := raw.Decode()
		if err != nil {
			_ = c.Error(apperrors.NewProviderError(err))
			return
		}

		resp, err := svc.Generate(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(metrics *observer.MetricsObserver, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:       "available",
			Version:      version,
			Time:         time.Now().UTC().Format(time.RFC3339),
			AIConfigured: cfg.AIConfigured(),
		}
		if metrics != nil {
			resp.Metrics = make(map[string]interface{})
			for route, m := range metrics.Snapshot() {
				resp.Metrics[route] = m
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString(requestIDKey),
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error: apperrors.PublicMessage(err),
	})
}
