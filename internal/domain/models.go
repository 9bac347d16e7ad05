package domain

import "time"

type ComplaintStatus string

const (
	StatusNew      ComplaintStatus = "new"
	StatusProgress ComplaintStatus = "progress"
	StatusResolved ComplaintStatus = "resolved"
)

// Valid reports whether s is one of the three known statuses. Transitions
// between valid statuses are not ordered: a resolved complaint may go back
// to new (reopen), gated only by ownership and a comment.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusNew, StatusProgress, StatusResolved:
		return true
	}

	return false
}

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
)

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

type Domain struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type DomainWithMembers struct {
	ID          string
	Name        string
	Description string
	Members     []Authority
}

type Authority struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	// DomainID is a weak reference kept alongside the domain_members set;
	// it can drift after partial writes and is reconciled on read.
	DomainID *string `db:"domain_id"`
}

type Student struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

type Complaint struct {
	ID          string            `db:"id"`
	Title       string            `db:"title"`
	Description string            `db:"description"`
	DomainID    string            `db:"domain_id"`
	StudentID   string            `db:"student_id"`
	AcceptedBy  *string           `db:"accepted_by"`
	Status      ComplaintStatus   `db:"status"`
	Priority    ComplaintPriority `db:"priority"`
	CreatedAt   time.Time         `db:"created_at"`
	Comments    []Comment
}

type Comment struct {
	ID          int64     `db:"id"`
	ComplaintID string    `db:"complaint_id"`
	AuthorID    string    `db:"author_id"`
	Body        string    `db:"body"`
	CreatedAt   time.Time `db:"created_at"`
}

type DomainStats struct {
	Total                 int `db:"total"`
	Pending               int `db:"pending"`
	InProgress            int `db:"in_progress"`
	Resolved              int `db:"resolved"`
	HighPriorityUnsettled int `db:"high_priority_unsettled"`
}

type PersonalStats struct {
	Total      int `db:"total"`
	InProgress int `db:"in_progress"`
	Resolved   int `db:"resolved"`
}
