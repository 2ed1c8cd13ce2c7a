// ABOUTME: Built-in starter cards installed when no stored board exists.
// ABOUTME: IDs are fixed so a fresh board is reproducible across profiles.
package kanban

import "time"

// DefaultCards returns the starter collection, stamped with now.
func DefaultCards(now time.Time) []Card {
	now = now.UTC()
	return []Card{
		{
			ID:          "1",
			Title:       "Capture the first ideas",
			Description: "Drop anything worth remembering into Ideas. Sort it out later.",
			Status:      StatusIdeas,
			Priority:    PriorityLow,
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Groom the backlog",
			Description: "Move the ideas you will actually do into Backlog and set a priority.",
			Status:      StatusBacklog,
			Priority:    PriorityMedium,
			CreatedAt:   now,
		},
		{
			ID:          "3",
			Title:       "Share the board",
			Description: "Export the board and commit it so collaborators can pull the latest version.",
			Status:      StatusBacklog,
			Priority:    PriorityMedium,
			CreatedAt:   now,
		},
		{
			ID:          "4",
			Title:       "Set up the board",
			Description: "Board loads, saves, and renders every column.",
			Status:      StatusDone,
			Priority:    PriorityHigh,
			CreatedAt:   now,
		},
	}
}
