package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Gemini validates Google AI keys through the generative-ai SDK.
type Gemini struct {
	// Options are appended after the API key, e.g. a custom endpoint.
	Options []option.ClientOption
}

func (g *Gemini) Validate(ctx context.Context, providerID, key string) error {
	opts := append([]option.ClientOption{option.WithAPIKey(key)}, g.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	_, err = client.ListModels(ctx).Next()
	if err == nil || errors.Is(err, iterator.Done) {
		return nil
	}
	if isAuthError(err) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidKey, providerID, err)
	}
	return fmt.Errorf("gemini model listing failed: %w", err)
}

func isAuthError(err error) bool {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return true
	}
	// Invalid keys surface as InvalidArgument with an API_KEY_INVALID reason.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "api_key_invalid") ||
		strings.Contains(msg, "permissiondenied") ||
		strings.Contains(msg, "permission_denied") ||
		strings.Contains(msg, "unauthenticated")
}
