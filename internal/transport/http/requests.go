package http

type createDomainRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type updateDomainRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type createComplaintRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required,min=5,max=2000"`
	DomainID    string `json:"domain_id" validate:"required,entity_id,min=1,max=100"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type transferComplaintRequest struct {
	TargetAuthorityID string `json:"target_authority_id" validate:"required,entity_id,min=1,max=100"`
}

type updateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=new progress resolved"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}
