// Package console holds the typed ODG endpoints behind the admin and vendor
// consoles. Every response type carries validate tags that the API client
// checks before returning.
package console

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/odg-delivery/console/internal/api"
)

// Service calls the ODG API on behalf of the console commands
type Service struct {
	client *api.Client
	logger zerolog.Logger
}

// NewService creates a new console service
func NewService(client *api.Client, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Client returns the underlying API client
func (s *Service) Client() *api.Client {
	return s.client
}

// check runs presence and number checks on a request body
func (s *Service) check(req any) error {
	if err := s.client.Validator().Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// post sends an action whose response body is not used
func (s *Service) post(ctx context.Context, path string, body any) error {
	if body == nil {
		body = struct{}{}
	}
	return s.client.Do(ctx, http.MethodPost, path, body, nil)
}
