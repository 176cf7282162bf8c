// Package validation provides input validation middleware for the FinSight API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// MaxQueryLength is the maximum length for natural language queries
const MaxQueryLength = 2000

var (
	// idRegex validates tenant and customer identifiers: letters, digits,
	// underscores and hyphens, 1-64 chars. Covers idgen-style IDs (tnt_x9f...)
	// as well as human-chosen slugs like "demo".
	idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	// dateRegex validates YYYY-MM-DD date parameters before time.Parse runs
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidID checks if a string is a valid tenant or customer identifier
func IsValidID(id string) bool {
	return idRegex.MatchString(id)
}

// IsValidDate checks if a string looks like a YYYY-MM-DD date
func IsValidDate(s string) bool {
	return dateRegex.MatchString(s)
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	// Trim whitespace
	s = strings.TrimSpace(s)

	// Limit length
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidID checks if a field is a valid identifier
func ValidID(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidID(value) {
			return &ValidationError{Field: field, Message: "must contain only letters, digits, '_' or '-' (max 64 chars)"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// TenantParamMiddleware validates the :tenant and :customer URL parameters on
// routes that use them. Apply to route groups to reject malformed IDs early.
func TenantParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenant := c.Param("tenant"); tenant != "" && !IsValidID(tenant) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_tenant",
				"message": "tenant ID must contain only letters, digits, '_' or '-'",
			})
			return
		}
		if customer := c.Param("customer"); customer != "" && !IsValidID(customer) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_customer",
				"message": "customer ID must contain only letters, digits, '_' or '-'",
			})
			return
		}
		c.Next()
	}
}
