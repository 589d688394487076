package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halbot/hal-advisor/internal/knowledge"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a sample CMPE/SE knowledge base",
	Long:  `Populates the database with a small set of software engineering courses, advisors, policies, and deadlines so the bot has something to answer from. Run ` + "`hal index`" + ` afterwards to build the vector index.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := knowledge.NewStore(database)
	ctx := context.Background()

	var n int
	for _, c := range seedCourses {
		if _, err := store.SaveCourse(ctx, c); err != nil {
			return fmt.Errorf("seeding course %s: %w", c.Code, err)
		}
		n++
	}
	for _, a := range seedAdvisors {
		if _, err := store.SaveAdvisor(ctx, a); err != nil {
			return fmt.Errorf("seeding advisor %s: %w", a.Name, err)
		}
		n++
	}
	for _, p := range seedPolicies {
		if _, err := store.SavePolicy(ctx, p); err != nil {
			return fmt.Errorf("seeding policy %s: %w", p.Question, err)
		}
		n++
	}
	for _, d := range seedDeadlines {
		if _, err := store.SaveDeadline(ctx, d); err != nil {
			return fmt.Errorf("seeding deadline %s: %w", d.DeadlineType, err)
		}
		n++
	}

	fmt.Printf("Seeded %d records. Run `hal index` to build the vector index.\n", n)
	return nil
}

var seedCourses = []knowledge.Course{
	{
		Code:          "CMPE 126",
		Name:          "Algorithms and Data Structure Design",
		Description:   "Object-oriented data organization and problem-solving strategies: stacks, queues, linked lists, trees, graphs, and hash tables, with algorithm design and complexity analysis.",
		Prerequisites: "CMPE 50 or CS 46B (grade C- or better)",
		Units:         3,
		Department:    "CMPE",
	},
	{
		Code:          "CMPE 131",
		Name:          "Software Engineering I",
		Description:   "Software development life cycle: requirements, design, implementation, testing, and maintenance, practiced in a semester-long team project.",
		Prerequisites: "CMPE 126 or CS 146 (grade C- or better)",
		Units:         3,
		Department:    "CMPE",
	},
	{
		Code:          "CMPE 135",
		Name:          "Object-Oriented Analysis and Design",
		Description:   "Object-oriented requirements analysis and design using UML, design patterns, and refactoring, with a focus on building maintainable systems.",
		Prerequisites: "CMPE 131 (grade C- or better)",
		Units:         3,
		Department:    "CMPE",
	},
	{
		Code:          "CS 146",
		Name:          "Data Structures and Algorithms",
		Description:   "Implementation and analysis of fundamental data structures and algorithms: sorting, searching, trees, graphs, and algorithm complexity.",
		Prerequisites: "CS 46B and MATH 42 (grade C- or better)",
		Units:         3,
		Department:    "CS",
	},
	{
		Code:          "SE 131",
		Name:          "Software Engineering Practices",
		Description:   "Hands-on software engineering practices: version control, code review, continuous integration, and agile team workflows.",
		Prerequisites: "CMPE 126 (grade C- or better)",
		Units:         3,
		Department:    "SE",
	},
}

var seedAdvisors = []knowledge.Advisor{
	{
		Name:          "Jane Rivera",
		Email:         "jane.rivera@example.edu",
		LastNameStart: "A",
		LastNameEnd:   "K",
	},
	{
		Name:          "Marcus Okafor",
		Email:         "marcus.okafor@example.edu",
		LastNameStart: "L",
		LastNameEnd:   "Z",
	},
}

var seedPolicies = []knowledge.Policy{
	{
		Category: "enrollment",
		Question: "How do I add a class after the semester starts?",
		Answer:   "During the late-add period you need a permission number from the instructor. After the add deadline, late adds require department approval and a documented reason.",
	},
	{
		Category: "enrollment",
		Question: "How do I drop a class?",
		Answer:   "Drop through the student portal before the drop deadline. After the deadline, drops become withdrawals and appear as a W on your transcript.",
	},
	{
		Category: "units",
		Question: "How many units can I take per semester?",
		Answer:   "The standard maximum is 17 units. Students in good academic standing may petition for up to 21 units with advisor approval.",
	},
	{
		Category: "graduation",
		Question: "How do I apply for graduation?",
		Answer:   "Submit the graduation application through the student portal at least two semesters before your intended graduation date, and complete a major form review with your advisor.",
	},
}

var seedDeadlines = []knowledge.Deadline{
	{
		Semester:     "Fall 2026",
		DeadlineType: "add",
		DueDate:      time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
		Description:  "Last day to add classes without instructor permission.",
	},
	{
		Semester:     "Fall 2026",
		DeadlineType: "drop",
		DueDate:      time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Description:  "Last day to drop classes without a W grade.",
	},
	{
		Semester:     "Fall 2026",
		DeadlineType: "withdrawal",
		DueDate:      time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC),
		Description:  "Last day to withdraw from classes with documented serious and compelling reasons.",
	},
	{
		Semester:     "Spring 2027",
		DeadlineType: "graduation_application",
		DueDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Description:  "Deadline to apply for Spring 2027 graduation.",
	},
}
