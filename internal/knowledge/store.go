package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halbot/hal-advisor/internal/db"
)

// Store manages persistence of knowledge-base records.
type Store struct {
	db *db.DB
}

// NewStore creates a new knowledge store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SaveCourse inserts or updates a course by its code.
func (s *Store) SaveCourse(ctx context.Context, c Course) (*Course, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, code, name, description, prerequisites, units, department, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   name=excluded.name, description=excluded.description,
		   prerequisites=excluded.prerequisites, units=excluded.units,
		   department=excluded.department, updated_at=excluded.updated_at`,
		c.ID, c.Code, c.Name, c.Description, c.Prerequisites, c.Units, c.Department, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving course %s: %w", c.Code, err)
	}
	return &c, nil
}

// GetCourse returns the course with the given normalized code, or nil.
func (s *Store) GetCourse(ctx context.Context, code string) (*Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, description, prerequisites, units, department, updated_at
		 FROM courses WHERE code = ?`, code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Prerequisites, &c.Units, &c.Department, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting course %s: %w", code, err)
	}
	return &c, nil
}

// ListCourses returns all courses ordered by code.
func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, description, prerequisites, units, department, updated_at
		 FROM courses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Prerequisites, &c.Units, &c.Department, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// DeleteCourse removes a course by ID.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return nil
}

// SaveAdvisor inserts or updates an advisor.
func (s *Store) SaveAdvisor(ctx context.Context, a Advisor) (*Advisor, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO advisors (id, name, email, booking_url, last_name_start, last_name_end, department, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, booking_url=excluded.booking_url,
		   last_name_start=excluded.last_name_start, last_name_end=excluded.last_name_end,
		   department=excluded.department, updated_at=excluded.updated_at`,
		a.ID, a.Name, a.Email, a.BookingURL, a.LastNameStart, a.LastNameEnd, a.Department, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving advisor %s: %w", a.Name, err)
	}
	return &a, nil
}

// ListAdvisors returns all advisors ordered by last-name range.
func (s *Store) ListAdvisors(ctx context.Context) ([]Advisor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, booking_url, last_name_start, last_name_end, department, updated_at
		 FROM advisors ORDER BY last_name_start`)
	if err != nil {
		return nil, fmt.Errorf("querying advisors: %w", err)
	}
	defer rows.Close()

	var advisors []Advisor
	for rows.Next() {
		var a Advisor
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.BookingURL, &a.LastNameStart, &a.LastNameEnd, &a.Department, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning advisor: %w", err)
		}
		advisors = append(advisors, a)
	}
	return advisors, rows.Err()
}

// SavePolicy inserts or updates a policy entry.
func (s *Store) SavePolicy(ctx context.Context, p Policy) (*Policy, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO policies (id, category, question, answer, url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   category=excluded.category, question=excluded.question,
		   answer=excluded.answer, url=excluded.url, updated_at=excluded.updated_at`,
		p.ID, p.Category, p.Question, p.Answer, p.URL, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving policy: %w", err)
	}
	return &p, nil
}

// ListPolicies returns all policies, optionally filtered by category.
func (s *Store) ListPolicies(ctx context.Context, category string) ([]Policy, error) {
	query := `SELECT id, category, question, answer, url, updated_at FROM policies`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, question`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying policies: %w", err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.Category, &p.Question, &p.Answer, &p.URL, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// SaveDeadline inserts or updates a deadline.
func (s *Store) SaveDeadline(ctx context.Context, d Deadline) (*Deadline, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deadlines (id, semester, deadline_type, due_date, description, url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   semester=excluded.semester, deadline_type=excluded.deadline_type,
		   due_date=excluded.due_date, description=excluded.description,
		   url=excluded.url, updated_at=excluded.updated_at`,
		d.ID, d.Semester, d.DeadlineType, d.DueDate, d.Description, d.URL, d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving deadline: %w", err)
	}
	return &d, nil
}

// ListDeadlines returns all deadlines ordered by due date.
func (s *Store) ListDeadlines(ctx context.Context) ([]Deadline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, semester, deadline_type, due_date, description, url, updated_at
		 FROM deadlines ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("querying deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []Deadline
	for rows.Next() {
		var d Deadline
		if err := rows.Scan(&d.ID, &d.Semester, &d.DeadlineType, &d.DueDate, &d.Description, &d.URL, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning deadline: %w", err)
		}
		deadlines = append(deadlines, d)
	}
	return deadlines, rows.Err()
}
