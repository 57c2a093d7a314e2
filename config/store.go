package config

import (
	"os"
	"path/filepath"

	"github.com/kardolus/chatgpt-agent/internal"
	"gopkg.in/yaml.v3"
)

const (
	defaultName                = "openai"
	defaultModel               = "gpt-4o-mini"
	defaultURL                 = "https://api.openai.com/v1"
	defaultThread              = "default"
	defaultTemperature         = 0.2
	defaultFollowupTemperature = 0.0
	defaultUserAgent           = "chatgpt-agent"
	defaultCommandPrompt       = "[%time] agent> "
	configFileName             = "config.yaml"
)

//go:generate mockgen -destination=storemocks_test.go -package=config_test github.com/kardolus/chatgpt-agent/config ConfigStore
type ConfigStore interface {
	Read() (Config, error)
	ReadDefaults() Config
}

// Ensure FileIO implements ConfigStore interface
var _ ConfigStore = &FileIO{}

// FileIO reads config.yaml from the config home. The agent never writes it.
type FileIO struct {
	configFilePath string
}

func New() *FileIO {
	configPath, _ := getPath()

	return &FileIO{configFilePath: configPath}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

func (f *FileIO) Path() string { return f.configFilePath }

func (f *FileIO) Read() (Config, error) {
	return parseFile(f.configFilePath)
}

func (f *FileIO) ReadDefaults() Config {
	return Config{
		Name:                defaultName,
		Model:               defaultModel,
		URL:                 defaultURL,
		Thread:              defaultThread,
		Temperature:         defaultTemperature,
		FollowupTemperature: defaultFollowupTemperature,
		UserAgent:           defaultUserAgent,
		CommandPrompt:       defaultCommandPrompt,
	}
}

func getPath() (string, error) {
	homeDir, err := internal.GetConfigHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, configFileName), nil
}

func parseFile(fileName string) (Config, error) {
	var result Config

	buf, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return Config{}, err
	}

	return result, nil
}
