package serverselect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/hireboard-dev/hireboard/internal/cli/userconfig"
)

// ResolveBaseURL determines which backend to talk to based on the following
// priority:
// 1. If the --api-url flag is provided, use that
// 2. If the user saved a backend with 'hireboard server', use that
// 3. Otherwise use the environment (HIREBOARD_API_BASE_URL or its default)
func ResolveBaseURL(flagURL, envURL string) (string, error) {
	// Priority 1: explicit flag
	if flagURL != "" {
		return Normalize(flagURL)
	}

	// Priority 2: saved backend
	cfg, err := userconfig.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load user config: %w", err)
	}
	if cfg.APIBaseURL != "" {
		return Normalize(cfg.APIBaseURL)
	}

	// Priority 3: environment
	return Normalize(envURL)
}

// Normalize validates a backend URL and strips the trailing slash
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// PromptBaseURL shows an interactive prompt for the backend URL, offering
// current as the default
func PromptBaseURL(current string) (string, error) {
	prompt := promptui.Prompt{
		Label:   "Backend URL",
		Default: current,
		Validate: func(input string) error {
			_, err := Normalize(input)
			return err
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("backend selection cancelled: %w", err)
	}

	return Normalize(result)
}

// PromptUsername asks for the login username, offering the last one used
func PromptUsername(last string) (string, error) {
	prompt := promptui.Prompt{
		Label:   "Username",
		Default: last,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("username is required")
			}
			return nil
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("login cancelled: %w", err)
	}
	return strings.TrimSpace(result), nil
}
