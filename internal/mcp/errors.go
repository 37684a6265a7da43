package mcp

import (
	"errors"
	"fmt"

	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
)

// APIError is the error text a tool call reports to the client.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, member.ErrMemberNotFound):
		return &APIError{Code: "MEMBER_NOT_FOUND", Message: "member not found", RecoveryHint: "Use list_candidates to find user ids"}
	case errors.Is(err, member.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input"}
	case errors.Is(err, member.ErrRoleUpdateFailed):
		return &APIError{Code: "ROLE_UPDATE_FAILED", Message: "chat platform rejected the role change", RecoveryHint: "Check the bot's role permissions"}
	case errors.Is(err, attendance.ErrVenueNotFound):
		return &APIError{Code: "VENUE_NOT_FOUND", Message: "venue channel not found", RecoveryHint: "Check discord.venue in the config"}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return nil
}
