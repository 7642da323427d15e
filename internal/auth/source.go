package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is wrapped by Load when a source has neither a file nor a value.
var ErrNotConfigured = errors.New("not configured")

// Source says where a token comes from. File takes precedence over Value.
type Source struct {
	// Name is used in error messages, "secret" when empty.
	Name string
	// Value is an inline token from configuration, flags or environment.
	Value string
	File  string
}

func (s Source) name() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return "secret"
}

// Load resolves the token of src. Surrounding whitespace is dropped.
func Load(src Source) (string, error) {
	if file := strings.TrimSpace(src.File); file != "" {
		return readFile(src.name(), file)
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is %w", src.name(), ErrNotConfigured)
	}

	return secret, nil
}

func readFile(name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", name, path, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name, path)
	}

	return secret, nil
}
