package config

import "github.com/kardolus/chatgpt-agent/agent/usage"

type Config struct {
	Name                string                 `yaml:"name"`
	APIKey              string                 `yaml:"api_key"`
	APIKeyFile          string                 `yaml:"api_key_file"`
	URL                 string                 `yaml:"url"`
	Organization        string                 `yaml:"organization"`
	Model               string                 `yaml:"model"`
	Temperature         float64                `yaml:"temperature"`
	FollowupTemperature float64                `yaml:"followup_temperature"`
	AutoApprove         bool                   `yaml:"auto_approve"`
	AllowOutsideRoot    bool                   `yaml:"allow_outside_root"`
	Pricing             map[string]usage.Price `yaml:"pricing"`
	Thread              string                 `yaml:"thread"`
	OmitHistory         bool                   `yaml:"omit_history"`
	SkipTLSVerify       bool                   `yaml:"skip_tls_verify"`
	Debug               bool                   `yaml:"debug"`
	UserAgent           string                 `yaml:"user_agent"`
	CommandPrompt       string                 `yaml:"command_prompt"`
	Agent               AgentConfig            `yaml:"agent"`
}

type AgentConfig struct {
	// Budgets (0 = unlimited)
	MaxActions  int `yaml:"max_actions"`
	MaxWallTime int `yaml:"max_wall_time"`
	MaxTokens   int `yaml:"max_tokens"`

	// Policy
	AllowedActions      []string `yaml:"allowed_actions"`
	DeniedShellCommands []string `yaml:"denied_shell_commands"`
}
