package request

import "github.com/d9705996/hrportal/internal/apierr"

// AttachableEntities lists the entity kinds a file can be attached to.
var AttachableEntities = []string{"feedback", "announcement"}

// AttachFile is the body for POST /api/files/{id}/attach.
type AttachFile struct {
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
}

func (b *AttachFile) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !oneOf(b.EntityType, AttachableEntities) {
		errs.add("entity_type", "Must be 'feedback' or 'announcement'")
	}
	if b.EntityID == 0 {
		errs.add("entity_id", "Must be a positive integer")
	}
	return errs
}
