package member

import "errors"

var (
	// ErrAlreadyRegistered indicates a record already exists for the identity.
	ErrAlreadyRegistered = errors.New("member already registered")
	// ErrMemberNotFound indicates no record exists for the identity.
	ErrMemberNotFound = errors.New("member not found")
	// ErrInvalidInput indicates invalid member input.
	ErrInvalidInput = errors.New("invalid member input")
	// ErrRoleUpdateFailed indicates the chat platform rejected a role change.
	ErrRoleUpdateFailed = errors.New("role update failed")
)
