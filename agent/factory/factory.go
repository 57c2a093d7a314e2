package factory

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kardolus/chatgpt-agent/agent/core"
	"github.com/kardolus/chatgpt-agent/agent/planexec"
	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/config"
)

type Deps struct {
	Clock     core.Clock
	LLM       planexec.LLM
	Executor  planexec.Executor
	Confirmer core.Confirmer
}

func validateDeps(deps Deps) error {
	if deps.Clock == nil {
		return fmt.Errorf("agent deps: Clock is required")
	}
	if deps.LLM == nil {
		return fmt.Errorf("agent deps: LLM is required")
	}
	if deps.Executor == nil {
		return fmt.Errorf("agent deps: Executor is required")
	}
	return nil
}

// New builds a plan-and-execute agent for root from the resolved
// configuration.
func New(cfg config.Config, root string, deps Deps, baseOpts ...core.BaseOption) (*planexec.PlanExecuteAgent, error) {
	if err := validateDeps(deps); err != nil {
		return nil, err
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("agent: workspace root is required")
	}

	policy, err := PolicyLimits(cfg.Agent)
	if err != nil {
		return nil, err
	}

	tc := types.ToolContext{Root: root, AllowOutsideRoot: cfg.AllowOutsideRoot}

	agent := planexec.NewPlanExecuteAgent(deps.Clock, deps.LLM, deps.Executor, Settings(cfg), tc, baseOpts...)
	agent.Confirmer = deps.Confirmer
	agent.Policy = core.NewDefaultPolicy(policy)
	agent.Budget = core.NewDefaultBudget(BudgetLimits(cfg.Agent))

	return agent, nil
}

func Settings(cfg config.Config) planexec.Settings {
	return planexec.Settings{
		Model:               cfg.Model,
		AutoApprove:         cfg.AutoApprove,
		Temperature:         float32(cfg.Temperature),
		FollowupTemperature: float32(cfg.FollowupTemperature),
		Pricing:             cfg.Pricing,
	}
}

func BudgetLimits(cfg config.AgentConfig) core.BudgetLimits {
	return core.BudgetLimits{
		MaxActions:  cfg.MaxActions,
		MaxWallTime: time.Duration(cfg.MaxWallTime) * time.Second,
		MaxTokens:   cfg.MaxTokens,
	}
}

// PolicyLimits fails on allowed_actions entries that name no action type.
func PolicyLimits(cfg config.AgentConfig) (core.PolicyLimits, error) {
	known := types.AllActionTypes()

	var allowed []types.ActionType
	for _, name := range cfg.AllowedActions {
		t := types.ActionType(strings.TrimSpace(name))
		if !slices.Contains(known, t) {
			return core.PolicyLimits{}, fmt.Errorf("unknown action type %q in allowed_actions", name)
		}
		allowed = append(allowed, t)
	}

	return core.PolicyLimits{
		AllowedActions:      allowed,
		DeniedShellCommands: cfg.DeniedShellCommands,
	}, nil
}
