package permissions

import (
	"errors"
	"strings"
)

// Action names an operation gated by the content policy.
type Action string

const (
	ActionCreate    Action = "create"
	ActionView      Action = "view"
	ActionEdit      Action = "edit"
	ActionDelete    Action = "delete"
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionUnpublish Action = "unpublish"
)

// ResourceContent is the only resource the policy reasons about.
const ResourceContent = "content"

var ErrPermissionDenied = errors.New("permissions: denied")

// Error reports a denied permission token such as "content:delete".
type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// Denied builds the error returned when actor lacks the right to perform action.
func Denied(action Action) error {
	return Error{Permission: Join(ResourceContent, action)}
}

// Join builds a permission token from resource and action.
func Join(resource string, action Action) string {
	res := normalizeToken(resource)
	act := normalizeToken(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
