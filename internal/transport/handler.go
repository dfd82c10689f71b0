package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-screen-perception/internal/config"
	apperrors "go-screen-perception/internal/errors"
	"go-screen-perception/internal/logger"
	"go-screen-perception/internal/service"
	"go-screen-perception/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewHandler builds the HTTP surface of the perception service.
func NewHandler(svc service.PerceptionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/v1/perceive", perceive(svc, cfg))
	r.POST("/v1/ocr/validate", validateOCR(svc, cfg))

	return r
}

func perceive(svc service.PerceptionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing perception request")

		var req models.PerceiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.Perceive(ctx, &req)
		if err != nil {
			wrapped := wrapContextError(err, "perception pass failed")
			logger.WithError(wrapped).WithFields(logrus.Fields{
				"app_name": req.AppName,
				"ip":       c.ClientIP(),
			}).Error("Perception pass failed")
			respondError(c, determineStatusCode(wrapped), "perception pass failed", wrapped)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"pass_id":            resp.PassID,
			"app_name":           req.AppName,
			"processing_time_ms": duration.Milliseconds(),
			"elements":           resp.ElementCount,
			"timed_out":          resp.Timings.TimedOut,
		}).Info("Perception pass completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func validateOCR(svc service.PerceptionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.OCRValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.ValidateOCR(ctx, &req)
		if err != nil {
			wrapped := wrapContextError(err, "OCR validation failed")
			logger.WithError(wrapped).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("OCR validation failed")
			respondError(c, determineStatusCode(wrapped), "OCR validation failed", wrapped)
			return
		}

		logger.WithFields(logrus.Fields{
			"word_count":      resp.WordCount,
			"word_error_rate": resp.WordErrorRate,
			"match_score":     resp.MatchScore,
		}).Info("OCR validation completed")

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

// wrapContextError replaces bare deadline errors with a timeout AppError so
// the client sees 504 instead of 500.
func wrapContextError(err error, message string) error {
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(message, err)
	}
	return err
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
