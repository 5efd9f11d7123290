package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseEnv sets *dest from the environment variable key when it is set.
// An unset or blank variable keeps the current value.
func parseEnv[T any](key string, dest *T, parse func(string) (T, error)) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, raw)
	}
	*dest = v
	return nil
}

func parseEnvInt(key string, dest *int) error {
	return parseEnv(key, dest, strconv.Atoi)
}

func parseEnvFloat(key string, dest *float64) error {
	return parseEnv(key, dest, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func parseEnvBool(key string, dest *bool) error {
	return parseEnv(key, dest, strconv.ParseBool)
}

func parseEnvString(key string, dest *string) error {
	return parseEnv(key, dest, func(s string) (string, error) { return s, nil })
}
