package apitest

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	bearerPrefix  = "Bearer "
	accountKey    = "account"
	maxRecordBody = 64 * 1024
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// recordMiddleware keeps every request for assertions and logs it
func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxRecordBody))
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        c.Request.Method,
			Path:          c.Request.URL.RequestURI(),
			Authorization: c.GetHeader("Authorization"),
			Body:          string(body),
		})
		s.mu.Unlock()

		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("HTTP request")
	}
}

// bearerAuth validates the token and loads its account
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			respondMessage(c, http.StatusUnauthorized, message)
			return
		}

		claims, err := s.signer.Validate(token)
		if err != nil {
			respondMessage(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		a := s.data.accountByID(claims.UserID)
		var copied account
		if a != nil {
			copied = *a
		}
		s.mu.Unlock()

		if a == nil {
			respondMessage(c, http.StatusUnauthorized, "User not found")
			return
		}
		if !copied.Active {
			respondMessage(c, http.StatusForbidden, "Account is deactivated")
			return
		}

		c.Set(accountKey, &copied)
		c.Next()
	}
}

func currentAccount(c *gin.Context) *account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	a, _ := v.(*account)
	return a
}

// adminOnly rejects accounts without the admin role
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := currentAccount(c)
		if a == nil {
			respondMessage(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if a.role() != "admin" {
			respondMessage(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// vendorAccess lets admins and the owning vendor through for /vendors/:id
func (s *Server) vendorAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid vendor id")
			return
		}

		s.mu.Lock()
		v := s.data.vendorByID(id)
		var owner int64
		if v != nil {
			owner = v.OwnerID
		}
		s.mu.Unlock()

		if v == nil {
			respondMessage(c, http.StatusNotFound, "Vendor not found")
			return
		}

		a := currentAccount(c)
		if a.role() != "admin" && a.ID != owner {
			respondMessage(c, http.StatusForbidden, "Not your vendor")
			return
		}

		c.Set("vendorID", id)
		c.Next()
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
