package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git-sync-operator/pkg/logging"
)

// LookupFunc resolves an environment key. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadFromEnv loads configuration from the process environment only.
func LoadFromEnv() (Config, error) {
	return Load("", os.LookupEnv)
}

// Load builds a Config from defaults, an optional YAML file at path and
// the environment, in that order of precedence (environment wins).
// Parse errors are collected into a ConfigurationErrorCollection; the
// result is then validated.
func Load(path string, lookup LookupFunc) (Config, error) {
	values := defaultValues()
	sources := make(map[string]string, len(values))

	var collected ConfigurationErrorCollection

	if path != "" {
		fileValues, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		for k, v := range fileValues {
			if !isKnownKey(k) {
				logging.Warn("Config", "Ignoring unknown key %s in %s", k, path)
				continue
			}
			values[k] = v
			sources[k] = "file"
		}
		logging.Debug("Config", "Loaded %d keys from %s", len(fileValues), path)
	}

	if lookup != nil {
		for _, k := range Keys {
			if v, ok := lookup(k); ok {
				values[k] = v
				sources[k] = "env"
			}
		}
	}

	cfg := Config{
		Repo:              strings.TrimSpace(values[KeyRepo]),
		Dir:               strings.TrimSpace(values[KeyDir]),
		Branch:            strings.TrimSpace(values[KeyBranch]),
		ManagedNamespaces: splitCSV(values[KeyManagedNamespaces]),
		S3Bucket:          strings.TrimSpace(values[KeyS3Bucket]),
		ClusterName:       strings.TrimSpace(values[KeyClusterName]),
		WebhookURL:        strings.TrimSpace(values[KeyWebhookURL]),
		WebhookTemplate:   values[KeyWebhookTemplate],
		MetricsAddr:       strings.TrimSpace(values[KeyMetricsAddr]),
		LogLevel:          strings.ToLower(strings.TrimSpace(values[KeyLogLevel])),
		LogFormat:         strings.ToLower(strings.TrimSpace(values[KeyLogFormat])),
		FieldManager:      strings.TrimSpace(values[KeyFieldManager]),
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(values[KeyInterval]))
	if err != nil {
		collected.Add(ConfigurationError{
			Key:         KeyInterval,
			Source:      sources[KeyInterval],
			ErrorType:   "parse",
			Message:     fmt.Sprintf("%q is not an integer number of seconds", values[KeyInterval]),
			Suggestions: []string{"Set GIT_SYNC_INTERVAL to a whole number, e.g. 60"},
		})
	} else {
		cfg.Interval = time.Duration(seconds) * time.Second
	}

	events, err := strconv.ParseBool(strings.TrimSpace(values[KeyKubeEvents]))
	if err != nil {
		collected.Add(ConfigurationError{
			Key:       KeyKubeEvents,
			Source:    sources[KeyKubeEvents],
			ErrorType: "parse",
			Message:   fmt.Sprintf("%q is not a boolean", values[KeyKubeEvents]),
		})
	} else {
		cfg.KubeEvents = events
	}

	if collected.HasErrors() {
		return Config{}, collected
	}

	if cfg.S3Bucket != "" && cfg.ClusterName == "" {
		logging.Warn("Config", "%s is set without %s; audit writes are disabled", KeyS3Bucket, KeyClusterName)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readFile decodes a flat YAML mapping. Sequence values are joined with
// commas so MANAGED_NAMESPACES may be written as a list.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ConfigurationError{
				Key:         path,
				Source:      "file",
				ErrorType:   "io",
				Message:     "configuration file does not exist",
				Suggestions: []string{"Check the --config flag or omit it to use the environment only"},
			}
		}
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ConfigurationError{
			Key:       path,
			Source:    "file",
			ErrorType: "parse",
			Message:   err.Error(),
		}
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch typed := v.(type) {
		case nil:
			values[k] = ""
		case []interface{}:
			parts := make([]string, 0, len(typed))
			for _, item := range typed {
				parts = append(parts, fmt.Sprint(item))
			}
			values[k] = strings.Join(parts, ",")
		default:
			values[k] = fmt.Sprint(typed)
		}
	}
	return values, nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// splitCSV splits a comma-separated list, trimming blanks and dropping
// empty entries.
func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
