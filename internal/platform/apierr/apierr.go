package apierr

import "fmt"

const (
	CodeInvalidRole          = "invalid_role"
	CodeInvalidScope         = "invalid_scope"
	CodeInvalidCategory      = "invalid_category"
	CodeMissingContext       = "missing_context"
	CodeAssetNotFound        = "asset_not_found"
	CodeTemplateNotFound     = "template_not_found"
	CodeCompositionNotFound  = "composition_not_found"
	CodeEpisodeNotFound      = "episode_not_found"
	CodeShowNotFound         = "show_not_found"
	CodeGenerationInFlight   = "generation_in_progress"
	CodeInvalidTemplate      = "invalid_template"
	CodeRoleSlotTaken        = "role_slot_taken"
	CodeInvalidFormat        = "invalid_format"
	CodeShowRequiredForScope = "show_required_for_scope"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
