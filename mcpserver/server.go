// ABOUTME: MCP tool server exposing the board and the decision map to agents over stdio.
// ABOUTME: Tools call the same services as the web UI; failures come back as tool errors, not transport errors.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/corkboard/app"
	"github.com/2389-research/corkboard/decisions"
	"github.com/2389-research/corkboard/kanban"
)

// CardView is the tool-facing shape of a card.
type CardView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"createdAt"`
}

type OptionView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	LinksTo  string `json:"linksTo,omitempty"`
}

type DecisionView struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Context  string       `json:"context,omitempty"`
	Status   string       `json:"status"`
	Options  []OptionView `json:"options"`
}

func cardView(c kanban.Card) CardView {
	return CardView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func decisionView(d decisions.Decision) DecisionView {
	v := DecisionView{
		ID:       d.ID,
		Question: d.Question,
		Context:  d.Context,
		Status:   string(d.Status),
		Options:  make([]OptionView, 0, len(d.Options)),
	}
	for _, o := range d.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Text: o.Text, Selected: o.Selected, LinksTo: o.Target()})
	}
	return v
}

type ListCardsInput struct {
	Status string `json:"status,omitempty" jsonschema:"only cards in this column: ideas, backlog, in-progress or done"`
}

type ListCardsOutput struct {
	Cards []CardView `json:"cards"`
}

type CreateCardInput struct {
	Title       string `json:"title" jsonschema:"card title, must not be blank"`
	Description string `json:"description,omitempty" jsonschema:"optional longer description"`
	Status      string `json:"status,omitempty" jsonschema:"column, defaults to ideas"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium or high; defaults to medium"`
}

type CardOutput struct {
	Card CardView `json:"card"`
}

type MoveCardInput struct {
	ID     string `json:"id" jsonschema:"card ID"`
	Status string `json:"status" jsonschema:"target column"`
}

type MoveCardOutput struct {
	Card    CardView `json:"card"`
	Changed bool     `json:"changed"`
}

type DeleteCardInput struct {
	ID string `json:"id" jsonschema:"card ID"`
}

type DeleteCardOutput struct {
	Deleted string `json:"deleted"`
}

type ListDecisionsInput struct{}

type ListDecisionsOutput struct {
	Decisions []DecisionView `json:"decisions"`
}

type ToggleOptionInput struct {
	DecisionID string `json:"decisionId" jsonschema:"decision ID"`
	OptionID   string `json:"optionId" jsonschema:"option ID within the decision"`
}

type LinkOptionInput struct {
	DecisionID string `json:"decisionId" jsonschema:"decision ID"`
	OptionID   string `json:"optionId" jsonschema:"option ID within the decision"`
	TargetID   string `json:"targetId,omitempty" jsonschema:"decision the option leads to; empty removes the link"`
}

type DecisionOutput struct {
	Decision DecisionView `json:"decision"`
}

// Tools holds the services the tool handlers act on.
type Tools struct {
	Board *app.BoardService
	Maps  *app.MapService
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "corkboard", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_cards",
		Description: "List kanban cards in board order, optionally for one column.",
	}, t.ListCards)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_card",
		Description: "Create a kanban card.",
	}, t.CreateCard)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_card",
		Description: "Move a card to another column.",
	}, t.MoveCard)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_card",
		Description: "Delete a card.",
	}, t.DeleteCard)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_decisions",
		Description: "List every decision on the map with its options and links.",
	}, t.ListDecisions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_option",
		Description: "Select an option of a decision, or clear it if already selected. At most one option stays selected.",
	}, t.ToggleOption)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "link_option",
		Description: "Point an option at the decision it leads to, or remove the link when targetId is empty.",
	}, t.LinkOption)

	return server
}

// Serve runs the tool server over stdin/stdout until the client disconnects
// or ctx is cancelled.
func Serve(ctx context.Context, t *Tools, version string) error {
	log.Printf("component=mcp action=serve transport=stdio")
	if err := NewServer(t, version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (t *Tools) ListCards(_ context.Context, _ *mcp.CallToolRequest, in ListCardsInput) (*mcp.CallToolResult, ListCardsOutput, error) {
	status := kanban.Status(in.Status)
	if status != "" && !status.Valid() {
		return nil, ListCardsOutput{}, fmt.Errorf("%w: %q", kanban.ErrUnknownStatus, in.Status)
	}
	out := ListCardsOutput{Cards: []CardView{}}
	for _, c := range t.Board.Cards() {
		if status == "" || c.Status == status {
			out.Cards = append(out.Cards, cardView(c))
		}
	}
	return nil, out, nil
}

func (t *Tools) CreateCard(ctx context.Context, _ *mcp.CallToolRequest, in CreateCardInput) (*mcp.CallToolResult, CardOutput, error) {
	card, err := t.Board.Create(ctx, kanban.CardInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      kanban.Status(in.Status),
		Priority:    kanban.Priority(in.Priority),
	})
	if err != nil {
		return nil, CardOutput{}, err
	}
	log.Printf("component=mcp action=create_card id=%s", card.ID)
	return nil, CardOutput{Card: cardView(card)}, nil
}

func (t *Tools) MoveCard(ctx context.Context, _ *mcp.CallToolRequest, in MoveCardInput) (*mcp.CallToolResult, MoveCardOutput, error) {
	changed, err := t.Board.Move(ctx, in.ID, kanban.Status(in.Status))
	if err != nil {
		return nil, MoveCardOutput{}, err
	}
	card, _ := t.Board.Find(in.ID)
	return nil, MoveCardOutput{Card: cardView(card), Changed: changed}, nil
}

func (t *Tools) DeleteCard(ctx context.Context, _ *mcp.CallToolRequest, in DeleteCardInput) (*mcp.CallToolResult, DeleteCardOutput, error) {
	if err := t.Board.Delete(ctx, in.ID); err != nil {
		return nil, DeleteCardOutput{}, err
	}
	return nil, DeleteCardOutput{Deleted: in.ID}, nil
}

func (t *Tools) ListDecisions(_ context.Context, _ *mcp.CallToolRequest, _ ListDecisionsInput) (*mcp.CallToolResult, ListDecisionsOutput, error) {
	ds := t.Maps.Decisions()
	out := ListDecisionsOutput{Decisions: make([]DecisionView, 0, len(ds))}
	for _, d := range ds {
		out.Decisions = append(out.Decisions, decisionView(d))
	}
	return nil, out, nil
}

func (t *Tools) ToggleOption(ctx context.Context, _ *mcp.CallToolRequest, in ToggleOptionInput) (*mcp.CallToolResult, DecisionOutput, error) {
	d, err := t.Maps.Toggle(ctx, in.DecisionID, in.OptionID)
	if err != nil {
		return nil, DecisionOutput{}, err
	}
	return nil, DecisionOutput{Decision: decisionView(d)}, nil
}

func (t *Tools) LinkOption(ctx context.Context, _ *mcp.CallToolRequest, in LinkOptionInput) (*mcp.CallToolResult, DecisionOutput, error) {
	var (
		d   decisions.Decision
		err error
	)
	if in.TargetID == "" {
		d, err = t.Maps.Unlink(ctx, in.DecisionID, in.OptionID)
	} else {
		d, err = t.Maps.Link(ctx, in.DecisionID, in.OptionID, in.TargetID)
	}
	if err != nil {
		return nil, DecisionOutput{}, err
	}
	return nil, DecisionOutput{Decision: decisionView(d)}, nil
}
