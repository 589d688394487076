package knowledge

import "time"

// Course holds catalog information including prerequisites.
type Course struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"` // normalized "DEPT NUM", e.g. "CMPE 131"
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Prerequisites string    `json:"prerequisites,omitempty"`
	Units         int       `json:"units"`
	Department    string    `json:"department,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Advisor maps a last-name range to an advisor.
type Advisor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	BookingURL    string    `json:"booking_url,omitempty"`
	LastNameStart string    `json:"last_name_start"`
	LastNameEnd   string    `json:"last_name_end"`
	Department    string    `json:"department,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Policy is an academic policy Q&A entry.
type Policy struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deadline is an important academic date.
type Deadline struct {
	ID           string    `json:"id"`
	Semester     string    `json:"semester"`
	DeadlineType string    `json:"deadline_type"`
	DueDate      time.Time `json:"due_date"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
