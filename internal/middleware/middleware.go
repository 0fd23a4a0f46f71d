package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context keys set by the middleware.
const (
	PractitionerIDKey = "practitioner_id"
	EmailKey          = "email"
	RequestIDKey      = "request_id"
)

const requestIDHeader = "X-Request-ID"

var (
	errMissingHeader = errors.New("authorization header is required")
	errHeaderFormat  = errors.New("use format: Bearer {token}")
	errClaims        = errors.New("token has no practitioner_id claim")
)

// AuthMiddleware requires a valid bearer token and stores the practitioner
// ID from its claims in the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, secret); err != nil {
			message := "Invalid or expired token"
			switch {
			case errors.Is(err, errMissingHeader):
				message = "Authorization header is required"
			case errors.Is(err, errHeaderFormat):
				message = "Invalid authorization header format"
			case errors.Is(err, errClaims):
				message = "Invalid token claims"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": message,
				"error":   err.Error(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth accepts anonymous requests. A token, when sent, must still be
// valid.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" || secret == "" {
			c.Next()
			return
		}
		AuthMiddleware(secret)(c)
	}
}

func authenticate(c *gin.Context, secret string) error {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return errMissingHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return errHeaderFormat
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errClaims
	}
	id, ok := claims[PractitionerIDKey].(float64)
	if !ok || id <= 0 {
		return errClaims
	}

	c.Set(PractitionerIDKey, uint(id))
	if email, ok := claims["email"].(string); ok {
		c.Set(EmailKey, email)
	}
	return nil
}

// PractitionerID returns the authenticated practitioner, if any.
func PractitionerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(PractitionerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// RequestLogger tags each request with an ID and logs it once it completes.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}

// LimitBodySize caps the request body at maxBytes.
func LimitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
