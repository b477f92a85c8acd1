package form

import "strings"

// TaskDraft is the unsaved content of the create/edit dialog.
type TaskDraft struct {
	Title       string
	Description string
}

// ValidateTask requires a non-blank title and description (after trimming).
func ValidateTask(d TaskDraft) Errors {
	errs := Errors{}
	if strings.TrimSpace(d.Title) == "" {
		errs[FieldTitle] = MsgTitleRequired
	}
	if strings.TrimSpace(d.Description) == "" {
		errs[FieldDescription] = MsgDescriptionRequired
	}
	return errs
}
