package knowledge

import (
	"fmt"
	"strings"

	"github.com/halbot/hal-advisor/internal/vectordb"
)

// Document renders a course as text for embedding.
func (c Course) Document() vectordb.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s - %s\n", c.Code, c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", c.Description)
	}
	if c.Prerequisites != "" {
		fmt.Fprintf(&b, "Prerequisites: %s\n", c.Prerequisites)
	}
	fmt.Fprintf(&b, "Units: %d", c.Units)

	return vectordb.Document{
		ID:      "course_" + c.ID,
		Content: b.String(),
		Metadata: vectordb.DocumentMetadata{
			Source: vectordb.SourceCourse,
			Code:   c.Code,
			Name:   c.Name,
		},
	}
}

// Document renders an advisor as text for embedding.
func (a Advisor) Document() vectordb.Document {
	content := fmt.Sprintf(
		"Advisor: %s\nHandles students with last names starting with %s through %s\nDepartment: %s\nBooking URL: %s",
		a.Name, a.LastNameStart, a.LastNameEnd, a.Department, a.BookingURL,
	)

	return vectordb.Document{
		ID:      "advisor_" + a.ID,
		Content: content,
		Metadata: vectordb.DocumentMetadata{
			Source: vectordb.SourceAdvisor,
			Name:   a.Name,
			URL:    a.BookingURL,
		},
	}
}

// Document renders a policy as text for embedding.
func (p Policy) Document() vectordb.Document {
	content := fmt.Sprintf("Category: %s\nQuestion: %s\nAnswer: %s", p.Category, p.Question, p.Answer)
	if p.URL != "" {
		content += "\nMore info: " + p.URL
	}

	return vectordb.Document{
		ID:      "policy_" + p.ID,
		Content: content,
		Metadata: vectordb.DocumentMetadata{
			Source:   vectordb.SourcePolicy,
			Category: p.Category,
			URL:      p.URL,
		},
	}
}

// Document renders a deadline as text for embedding.
func (d Deadline) Document() vectordb.Document {
	content := fmt.Sprintf(
		"Deadline: %s\nSemester: %s\nDate: %s\nDescription: %s",
		d.DeadlineType, d.Semester, d.DueDate.Format("January 2, 2006"), d.Description,
	)

	return vectordb.Document{
		ID:      "deadline_" + d.ID,
		Content: content,
		Metadata: vectordb.DocumentMetadata{
			Source:   vectordb.SourceDeadline,
			Category: d.DeadlineType,
			Semester: d.Semester,
			URL:      d.URL,
		},
	}
}
