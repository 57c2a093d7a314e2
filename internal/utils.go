package internal

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	ConfigHomeEnv     = "AGENT_CONFIG_HOME"
	DataHomeEnv       = "AGENT_DATA_HOME"
	CacheHomeEnv      = "AGENT_CACHE_HOME"
	DefaultConfigDir  = ".chatgpt-agent"
	DefaultDataDir    = "data"
	DefaultCacheDir   = "cache"
	SlugPostfixLength = 8
)

func GenerateUniqueSlug(prefix string) string {
	guid := uuid.New()
	return prefix + guid.String()[:SlugPostfixLength]
}

func GetConfigHome() (string, error) {
	if tmp := os.Getenv(ConfigHomeEnv); tmp != "" {
		return tmp, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, DefaultConfigDir), nil
}

func GetDataHome() (string, error) {
	return subHome(DataHomeEnv, DefaultDataDir)
}

func GetCacheHome() (string, error) {
	return subHome(CacheHomeEnv, DefaultCacheDir)
}

func subHome(env, dir string) (string, error) {
	if tmp := os.Getenv(env); tmp != "" {
		return tmp, nil
	}

	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(configHome, dir), nil
}
