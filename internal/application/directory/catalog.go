package directory

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/aescanero/signup/pkg/domain"
)

// DefaultCatalog returns the activities seeded when no catalog file is configured
func DefaultCatalog() []domain.Activity {
	return []domain.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Basketball Team",
			Description:     "Competitive basketball training and inter-school games",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu"},
		},
		{
			Name:            "Tennis Club",
			Description:     "Tennis lessons, drills and friendly matches",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"ava@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore painting, drawing and sculpture",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"mia@mergington.edu"},
		},
		{
			Name:            "Drama Club",
			Description:     "Acting, stagecraft and the spring school play",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"noah@mergington.edu"},
		},
		{
			Name:            "Math Club",
			Description:     "Problem solving and preparation for math competitions",
			Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 12,
			Participants:    []string{"isabella@mergington.edu"},
		},
		{
			Name:            "Debate Team",
			Description:     "Public speaking, argumentation and tournaments",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"ethan@mergington.edu"},
		},
	}
}

// LoadCatalogFile reads a YAML catalog from path
func LoadCatalogFile(path string) ([]domain.Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML mapping of activity name to activity fields,
// keeping the order in which activities appear in the document.
func ParseCatalog(data []byte) ([]domain.Activity, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog must be a mapping of activity names, got line %d", doc.Line)
	}

	activities := make([]domain.Activity, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		var activity domain.Activity
		if err := value.Decode(&activity); err != nil {
			return nil, fmt.Errorf("activity %q (line %d): %w", key.Value, key.Line, err)
		}
		activity.Name = key.Value
		if activity.Participants == nil {
			activity.Participants = []string{}
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// ValidateCatalog checks a catalog before it is seeded
func ValidateCatalog(activities []domain.Activity) error {
	if len(activities) == 0 {
		return fmt.Errorf("catalog must have at least one activity")
	}

	names := make(map[string]bool, len(activities))
	for _, activity := range activities {
		if err := validateActivity(activity); err != nil {
			return err
		}
		if names[activity.Name] {
			return fmt.Errorf("duplicate activity: %s", activity.Name)
		}
		names[activity.Name] = true
	}

	return nil
}

// validateActivity validates a single catalog entry
func validateActivity(activity domain.Activity) error {
	if activity.Name == "" {
		return fmt.Errorf("activity name is required")
	}
	if activity.MaxParticipants <= 0 {
		return fmt.Errorf("activity %s: max_participants must be positive", activity.Name)
	}
	if len(activity.Participants) > activity.MaxParticipants {
		return fmt.Errorf("activity %s: %d participants exceed capacity %d",
			activity.Name, len(activity.Participants), activity.MaxParticipants)
	}

	for i, email := range activity.Participants {
		if email == "" {
			return fmt.Errorf("activity %s: empty participant at position %d", activity.Name, i)
		}
		if slices.Contains(activity.Participants[:i], email) {
			return fmt.Errorf("activity %s: participant %s listed twice", activity.Name, email)
		}
	}

	return nil
}
