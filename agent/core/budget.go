package core

import (
	"errors"
	"fmt"
	"time"
)

type Budget interface {
	Start(now time.Time)
	AllowAction(now time.Time) error
	AllowTokens(now time.Time) error
	ChargeTokens(tokens int, now time.Time)
	Snapshot(now time.Time) BudgetSnapshot
}

const (
	BudgetKindActions  = "actions"
	BudgetKindTokens   = "tokens"
	BudgetKindWallTime = "wall_time"
)

// BudgetLimits caps a single run. Zero means unlimited.
type BudgetLimits struct {
	MaxActions  int
	MaxWallTime time.Duration
	MaxTokens   int
}

type BudgetSnapshot struct {
	StartedAt   time.Time
	Elapsed     time.Duration
	Limits      BudgetLimits
	ActionsUsed int
	TokensUsed  int
}

type DefaultBudget struct {
	limits BudgetLimits

	started   bool
	startedAt time.Time

	actionsUsed int
	tokensUsed  int
}

func NewDefaultBudget(limits BudgetLimits) *DefaultBudget {
	return &DefaultBudget{limits: limits}
}

func (b *DefaultBudget) Start(now time.Time) {
	b.started = true
	b.startedAt = now
	b.actionsUsed = 0
	b.tokensUsed = 0
}

func (b *DefaultBudget) Snapshot(now time.Time) BudgetSnapshot {
	b.ensureStarted(now)

	elapsed := now.Sub(b.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	return BudgetSnapshot{
		StartedAt:   b.startedAt,
		Elapsed:     elapsed,
		Limits:      b.limits,
		ActionsUsed: b.actionsUsed,
		TokensUsed:  b.tokensUsed,
	}
}

// AllowAction charges one action. A refused action is not counted.
func (b *DefaultBudget) AllowAction(now time.Time) error {
	b.ensureStarted(now)

	if err := b.checkWall(now); err != nil {
		return err
	}

	if b.limits.MaxActions > 0 && b.actionsUsed+1 > b.limits.MaxActions {
		return BudgetExceededError{
			Kind:    BudgetKindActions,
			Limit:   b.limits.MaxActions,
			Used:    b.actionsUsed,
			Message: "action budget exceeded",
		}
	}

	b.actionsUsed++
	return nil
}

// AllowTokens reports whether another model call fits the token budget.
func (b *DefaultBudget) AllowTokens(now time.Time) error {
	b.ensureStarted(now)

	if err := b.checkWall(now); err != nil {
		return err
	}

	if b.limits.MaxTokens > 0 && b.tokensUsed >= b.limits.MaxTokens {
		return BudgetExceededError{
			Kind:    BudgetKindTokens,
			Limit:   b.limits.MaxTokens,
			Used:    b.tokensUsed,
			Message: "token budget exceeded",
		}
	}
	return nil
}

func (b *DefaultBudget) ChargeTokens(tokens int, now time.Time) {
	b.ensureStarted(now)
	if tokens > 0 {
		b.tokensUsed += tokens
	}
}

func (b *DefaultBudget) ensureStarted(now time.Time) {
	if b.started {
		return
	}
	b.Start(now)
}

func (b *DefaultBudget) checkWall(now time.Time) error {
	if b.limits.MaxWallTime <= 0 {
		return nil
	}
	elapsed := now.Sub(b.startedAt)
	if elapsed > b.limits.MaxWallTime {
		return BudgetExceededError{
			Kind:    BudgetKindWallTime,
			LimitD:  b.limits.MaxWallTime,
			UsedD:   elapsed,
			Message: "wall time budget exceeded",
		}
	}
	return nil
}

// BudgetExceededError is a typed error so the orchestrator can branch on it.
type BudgetExceededError struct {
	// "actions" | "tokens" | "wall_time"
	Kind    string
	Limit   int
	Used    int
	LimitD  time.Duration
	UsedD   time.Duration
	Message string
}

func (e BudgetExceededError) Error() string {
	if e.Kind == BudgetKindWallTime {
		return fmt.Sprintf("%s: limit=%s used=%s", e.Message, e.LimitD, e.UsedD)
	}
	return fmt.Sprintf("%s: kind=%s limit=%d used=%d", e.Message, e.Kind, e.Limit, e.Used)
}

func IsBudgetExceeded(err error) bool {
	var be BudgetExceededError
	return errors.As(err, &be)
}
