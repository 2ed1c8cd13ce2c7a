// ABOUTME: Renders the board and the decision map as human-readable YAML documents.
// ABOUTME: Board lanes follow column order and omit unknown statuses; option links carry the target's question.
package export

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
)

// YamlCard is one card inside a lane.
type YamlCard struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Priority    string `yaml:"priority"`
	CreatedAt   string `yaml:"created_at"`
}

// YamlLane is one board column.
type YamlLane struct {
	Status string     `yaml:"status"`
	Title  string     `yaml:"title"`
	Cards  []YamlCard `yaml:"cards"`
}

// YamlBoard is the top-level board document.
type YamlBoard struct {
	Version     int        `yaml:"version"`
	LastUpdated string     `yaml:"last_updated"`
	UpdatedBy   string     `yaml:"updated_by"`
	Lanes       []YamlLane `yaml:"lanes"`
}

// BoardYAML renders snap grouped into lanes.
func BoardYAML(snap kanban.Snapshot) (string, error) {
	columns := kanban.NewBoard(snap.Cards).Columns()
	lanes := make([]YamlLane, 0, len(columns))
	for _, col := range columns {
		cards := make([]YamlCard, 0, len(col.Cards))
		for _, c := range col.Cards {
			cards = append(cards, YamlCard{
				ID:          c.ID,
				Title:       c.Title,
				Description: c.Description,
				Priority:    string(c.Priority),
				CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		lanes = append(lanes, YamlLane{Status: string(col.Status), Title: col.Title, Cards: cards})
	}

	doc := YamlBoard{
		Version:     snap.Version,
		LastUpdated: snap.LastUpdated.UTC().Format(time.RFC3339),
		UpdatedBy:   snap.UpdatedBy,
		Lanes:       lanes,
	}
	return marshal(&doc)
}

// YamlOption is one option of a decision.
type YamlOption struct {
	ID       string    `yaml:"id"`
	Text     string    `yaml:"text"`
	Selected bool      `yaml:"selected,omitempty"`
	LinksTo  *YamlLink `yaml:"links_to,omitempty"`
}

// YamlLink names the decision an option leads to.
type YamlLink struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question,omitempty"`
}

// YamlDecision is one decision node.
type YamlDecision struct {
	ID         string       `yaml:"id"`
	Question   string       `yaml:"question"`
	Status     string       `yaml:"status"`
	Context    string       `yaml:"context,omitempty"`
	Evaluation string       `yaml:"evaluation,omitempty"`
	Position   [2]int       `yaml:"position,flow"`
	Options    []YamlOption `yaml:"options"`
}

// YamlMap is the top-level decision map document.
type YamlMap struct {
	Decisions []YamlDecision `yaml:"decisions"`
}

// MapYAML renders ds in collection order. Links to decisions that no longer
// exist keep their ID but have no question.
func MapYAML(ds []decisions.Decision) (string, error) {
	questions := make(map[string]string, len(ds))
	for _, d := range ds {
		questions[d.ID] = d.Question
	}

	out := YamlMap{Decisions: make([]YamlDecision, 0, len(ds))}
	for _, d := range ds {
		opts := make([]YamlOption, 0, len(d.Options))
		for _, o := range d.Options {
			yo := YamlOption{ID: o.ID, Text: o.Text, Selected: o.Selected}
			if o.Linked() {
				yo.LinksTo = &YamlLink{ID: o.Target(), Question: questions[o.Target()]}
			}
			opts = append(opts, yo)
		}
		out.Decisions = append(out.Decisions, YamlDecision{
			ID:         d.ID,
			Question:   d.Question,
			Status:     string(d.Status),
			Context:    d.Context,
			Evaluation: d.Evaluation,
			Position:   [2]int{d.X, d.Y},
			Options:    opts,
		})
	}
	return marshal(&out)
}

func marshal(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}
