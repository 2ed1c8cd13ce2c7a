// ABOUTME: Seed decision installed when no stored map exists.
package decisions

// DefaultDecisions returns the one-node seed map.
func DefaultDecisions() []Decision {
	return []Decision{
		{
			ID:       "1",
			Question: "Open source license",
			Context:  "Which license should the repository ship under?",
			Status:   StatusOpen,
			X:        100,
			Y:        100,
			Options: []Option{
				{ID: "opt1", Text: "MIT License"},
				{ID: "opt2", Text: "GPL"},
				{ID: "opt3", Text: "Apache 2.0"},
			},
		},
	}
}
