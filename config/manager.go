package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrMissingAPIKey = errors.New("missing API key")

const maskedKey = "********"

type Manager struct {
	configStore ConfigStore
	Config      Config
}

func NewManager(cs ConfigStore) *Manager {
	configuration := cs.ReadDefaults()

	userConfig, err := cs.Read()
	if err == nil {
		replaceByConfigFile(reflect.ValueOf(&configuration).Elem(), reflect.ValueOf(userConfig))
	}

	return &Manager{configStore: cs, Config: configuration}
}

func (c *Manager) WithEnvironment() *Manager {
	prefix := strings.ToUpper(c.Config.Name) + "_"
	replaceByEnvironment(reflect.ValueOf(&c.Config).Elem(), prefix)
	return c
}

func (c *Manager) APIKeyEnvVarName() string {
	return strings.ToUpper(c.Config.Name) + "_" + "API_KEY"
}

// ResolveAPIKey returns the credential from api_key (file or environment),
// falling back to the contents of api_key_file.
func (c *Manager) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(c.Config.APIKey); key != "" {
		return key, nil
	}

	if c.Config.APIKeyFile != "" {
		key, err := ReadAPIKeyFile(c.Config.APIKeyFile)
		if err != nil {
			return "", err
		}
		c.Config.APIKey = key
		return key, nil
	}

	return "", fmt.Errorf("%w: set %s or api_key_file in the config", ErrMissingAPIKey, c.APIKeyEnvVarName())
}

// ShowConfig serializes the current configuration to YAML with the API key
// masked.
func (c *Manager) ShowConfig() (string, error) {
	shown := c.Config
	if shown.APIKey != "" {
		shown.APIKey = maskedKey
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func replaceByConfigFile(dst, user reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		defaultField := dst.Field(i)
		userField := user.Field(i)

		switch defaultField.Kind() {
		case reflect.String:
			if userStr := userField.String(); userStr != "" {
				defaultField.SetString(userStr)
			}
		case reflect.Int:
			if userInt := userField.Int(); userInt != 0 {
				defaultField.SetInt(userInt)
			}
		case reflect.Bool:
			defaultField.SetBool(userField.Bool())
		case reflect.Float64:
			if userFloat := userField.Float(); userFloat != 0.0 {
				defaultField.SetFloat(userFloat)
			}
		case reflect.Slice, reflect.Map:
			if !userField.IsNil() {
				defaultField.Set(userField)
			}
		case reflect.Struct:
			replaceByConfigFile(defaultField, userField)
		}
	}
}

func replaceByEnvironment(v reflect.Value, prefix string) {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "name" {
			continue
		}

		field := v.Field(i)
		name := prefix + strings.ToUpper(tag)

		if field.Kind() == reflect.Struct {
			replaceByEnvironment(field, name+"_")
			continue
		}

		value := os.Getenv(name)
		if value == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int:
			intValue, _ := strconv.Atoi(value)
			field.SetInt(int64(intValue))
		case reflect.Bool:
			boolValue, _ := strconv.ParseBool(value)
			field.SetBool(boolValue)
		case reflect.Float64:
			floatValue, _ := strconv.ParseFloat(value, 64)
			field.SetFloat(floatValue)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(splitList(value)))
			}
		}
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
