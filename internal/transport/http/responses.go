package http

import (
	"time"

	"github.com/aegis-campus/aegis/internal/domain"
)

// envelope is the wire format every response uses. Clients depend on this
// exact shape, including errors.
type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type memberSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type domainResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []memberSummary `json:"members"`
}

type authorityResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	DomainID *string `json:"domain_id"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type complaintResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DomainID    string            `json:"domain_id"`
	StudentID   string            `json:"student_id"`
	AcceptedBy  *string           `json:"accepted_by"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	CreatedAt   time.Time         `json:"created_at"`
	Comments    []commentResponse `json:"comments"`
}

type domainStatsResponse struct {
	Total                  int `json:"total"`
	Pending                int `json:"pending"`
	InProgress             int `json:"inProgress"`
	Resolved               int `json:"resolved"`
	HighPriorityUnresolved int `json:"highPriorityUnresolved"`
}

type personalStatsResponse struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

type statsResponse struct {
	Domain   domainStatsResponse   `json:"domain"`
	Personal personalStatsResponse `json:"personal"`
}

func toDomainResponse(d *domain.DomainWithMembers) *domainResponse {
	members := make([]memberSummary, len(d.Members))
	for i, m := range d.Members {
		members[i] = memberSummary{
			ID:    m.ID,
			Name:  m.Name,
			Email: m.Email,
		}
	}

	return &domainResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Members:     members,
	}
}

func toDomainListResponse(domains []domain.DomainWithMembers) []domainResponse {
	result := make([]domainResponse, len(domains))
	for i := range domains {
		result[i] = *toDomainResponse(&domains[i])
	}

	return result
}

func toAuthorityResponse(a *domain.Authority) *authorityResponse {
	return &authorityResponse{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		DomainID: a.DomainID,
	}
}

func toAuthorityListResponse(authorities []domain.Authority) []authorityResponse {
	result := make([]authorityResponse, len(authorities))
	for i := range authorities {
		result[i] = *toAuthorityResponse(&authorities[i])
	}

	return result
}

func toComplaintResponse(c *domain.Complaint) *complaintResponse {
	comments := make([]commentResponse, len(c.Comments))
	for i, cm := range c.Comments {
		comments[i] = commentResponse{
			ID:        cm.ID,
			AuthorID:  cm.AuthorID,
			Body:      cm.Body,
			CreatedAt: cm.CreatedAt,
		}
	}

	return &complaintResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		DomainID:    c.DomainID,
		StudentID:   c.StudentID,
		AcceptedBy:  c.AcceptedBy,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		CreatedAt:   c.CreatedAt,
		Comments:    comments,
	}
}

func toComplaintListResponse(complaints []domain.Complaint) []complaintResponse {
	result := make([]complaintResponse, len(complaints))
	for i := range complaints {
		result[i] = *toComplaintResponse(&complaints[i])
	}

	return result
}

func toStatsResponse(d *domain.DomainStats, p *domain.PersonalStats) *statsResponse {
	return &statsResponse{
		Domain: domainStatsResponse{
			Total:                  d.Total,
			Pending:                d.Pending,
			InProgress:             d.InProgress,
			Resolved:               d.Resolved,
			HighPriorityUnresolved: d.HighPriorityUnsettled,
		},
		Personal: personalStatsResponse{
			Total:      p.Total,
			InProgress: p.InProgress,
			Resolved:   p.Resolved,
		},
	}
}
