package model

import "strings"

// ValidateForm checks the form-shape rules for a config edit. Script
// parsing is the orchestrator's concern and happens before this. New
// records do not require a comment; the diff records the full initial body.
func ValidateForm(isNew bool, form *ConfigForm) error {
	if strings.TrimSpace(form.ScriptBody) == "" {
		return &RequiredFieldError{Field: "scriptBody"}
	}

	if !isNew {
		if strings.TrimSpace(form.Comment) == "" {
			return &RequiredFieldError{Field: "comment"}
		}
		if len([]rune(form.Comment)) > CommentMaxLength {
			return &FieldTooLongError{Field: "comment", Max: CommentMaxLength}
		}
	}

	return nil
}
