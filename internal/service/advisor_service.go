package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/pkg/datetime"
	"github.com/nestegg/backend/pkg/money"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// maxHistoryMessages caps how much prior conversation is replayed per request.
const maxHistoryMessages = 10

// AdvisorService turns free-form chat into concrete savings-goal proposals.
// The model is asked to embed a machine-readable proposal block in its reply;
// everything the user confirms still goes through GoalService.Create, so a
// proposal can never bypass validation.
type AdvisorService struct {
	goals    *GoalService
	apiKey   string
	enabled  bool
	client   *http.Client
	endpoint string
	today    func() datetime.Date
}

func NewAdvisorService(goals *GoalService, apiKey string, enabled bool) *AdvisorService {
	return &AdvisorService{
		goals:    goals,
		apiKey:   apiKey,
		enabled:  enabled,
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: openAIEndpoint,
		today:    datetime.Today,
	}
}

// ChatMessage is one turn of the running conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatInput struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ProposedGoal is the raw proposal as emitted by the model. Amount fields are
// loosely typed because the model occasionally returns strings; validation
// coerces or defaults them.
type ProposedGoal struct {
	Name          string `json:"name"`
	TargetAmount  any    `json:"target_amount"`
	TargetDate    string `json:"target_date"`
	Frequency     string `json:"frequency"`
	InitialAmount any    `json:"initial_amount"`
}

type ChatResponse struct {
	Reply        string        `json:"reply"`
	ProposedGoal *ProposedGoal `json:"proposedGoal,omitempty"`
}

const advisorSystemPrompt = `You are the NestEgg savings advisor. Help the user plan savings goals: realistic target amounts, deadlines and contribution cadences.

When the user agrees on a concrete goal, append a fenced JSON block to your reply in exactly this shape:

` + "```json" + `
{"proposed_goal": {"name": "...", "target_amount": 0, "target_date": "YYYY-MM-DD", "frequency": "weekly|bi-weekly|monthly", "initial_amount": 0}}
` + "```" + `

Only include the block for a concrete, agreed goal. Keep replies short and practical.`

// Chat sends the user's message, with recent history and current goal context,
// to the model. A missing API key is a configuration state, not an error.
func (s *AdvisorService) Chat(ctx context.Context, userID uuid.UUID, input ChatInput) (*ChatResponse, error) {
	if !s.enabled || s.apiKey == "" {
		return &ChatResponse{
			Reply: "The savings advisor is not configured. Add an OpenAI API key to enable it.",
		}, nil
	}

	messages := []ChatMessage{{Role: "system", Content: s.buildSystemPrompt(ctx, userID)}}
	history := input.History
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: input.Message})

	content, err := s.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("advisor chat: %w", err)
	}

	reply, proposal := ParseProposedGoal(content)
	return &ChatResponse{Reply: reply, ProposedGoal: proposal}, nil
}

// ConfirmGoal validates a proposal the user accepted and creates the goal
// through the normal lifecycle path.
func (s *AdvisorService) ConfirmGoal(ctx context.Context, userID uuid.UUID, proposal ProposedGoal) (*GoalWithProgress, error) {
	input, err := s.ValidateProposedGoal(proposal)
	if err != nil {
		return nil, err
	}
	return s.goals.Create(ctx, userID, input)
}

// ValidateProposedGoal coerces a raw model proposal into a creatable input.
// Name and frequency must be usable as-is; amounts and dates degrade
// gracefully: an unparseable initial amount becomes zero, an unparseable date
// lands a year out, and a past date is pushed thirty days ahead.
func (s *AdvisorService) ValidateProposedGoal(proposal ProposedGoal) (CreateGoalInput, error) {
	name := strings.TrimSpace(proposal.Name)
	if name == "" {
		return CreateGoalInput{}, ErrGoalNameRequired
	}

	freq := model.Frequency(strings.ToLower(strings.TrimSpace(proposal.Frequency)))
	if !freq.IsValid() {
		return CreateGoalInput{}, ErrInvalidFrequency
	}

	target := coerceAmount(proposal.TargetAmount)
	if target.LessThanOrEqual(decimal.Zero) {
		return CreateGoalInput{}, ErrInvalidTarget
	}

	initial := coerceAmount(proposal.InitialAmount)
	if initial.IsNegative() {
		initial = decimal.Zero
	}

	today := s.today()
	targetDate, err := datetime.ParseDate(strings.TrimSpace(proposal.TargetDate))
	if err != nil {
		targetDate = today.AddDays(365)
	} else if !targetDate.After(today) {
		targetDate = today.AddDays(30)
	}

	return CreateGoalInput{
		Name:          name,
		TargetAmount:  money.RoundCents(target),
		TargetDate:    targetDate,
		Frequency:     freq,
		InitialAmount: money.RoundCents(initial),
	}, nil
}

var proposalBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type proposalEnvelope struct {
	ProposedGoal *ProposedGoal `json:"proposed_goal"`
}

// ParseProposedGoal extracts an embedded proposal block from a model reply.
// The block is stripped from the visible reply. A reply that is nothing but
// bare proposal JSON is also accepted.
func ParseProposedGoal(content string) (string, *ProposedGoal) {
	if m := proposalBlockRe.FindStringSubmatch(content); m != nil {
		var envelope proposalEnvelope
		if err := json.Unmarshal([]byte(m[1]), &envelope); err == nil && envelope.ProposedGoal != nil {
			reply := strings.TrimSpace(proposalBlockRe.ReplaceAllString(content, ""))
			if reply == "" {
				reply = "I put together a goal for you. Want me to set it up?"
			}
			return reply, envelope.ProposedGoal
		}
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		var envelope proposalEnvelope
		if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil && envelope.ProposedGoal != nil {
			return "I put together a goal for you. Want me to set it up?", envelope.ProposedGoal
		}
	}

	return content, nil
}

// buildSystemPrompt appends the user's live goals so the model advises in
// context. A goal listing failure degrades to the bare prompt.
func (s *AdvisorService) buildSystemPrompt(ctx context.Context, userID uuid.UUID) string {
	goals, err := s.goals.ListWithProgress(ctx, userID)
	if err != nil || len(goals) == 0 {
		return advisorSystemPrompt
	}

	var b strings.Builder
	b.WriteString(advisorSystemPrompt)
	b.WriteString("\n\nThe user's current goals:\n")
	for _, g := range goals {
		fmt.Fprintf(&b, "- %s: %s of %s saved (%s%%), %s cadence, deadline %s\n",
			g.Name, money.Format(g.SavedAmount), money.Format(g.TargetAmount),
			g.Progress.PercentComplete.StringFixed(0), g.Frequency, g.TargetDate.String())
	}
	return b.String()
}

type openAIRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *AdvisorService) complete(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := openAIRequest{
		Model:    "gpt-4o-mini",
		Messages: messages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned %d", resp.StatusCode)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response had no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// coerceAmount accepts the number-or-string amounts the model produces.
// Anything unparseable is zero.
func coerceAmount(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		d, err := money.ParseAmount(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
