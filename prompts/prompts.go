package prompts

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

var confirmPattern = regexp.MustCompile(`(?i)^(yes|y)$`)

// promptUIRunner is a variable for testing purposes to allow mocking prompt.Run()
var promptUIRunner = func(prompt promptui.Prompt) (string, error) {
	return prompt.Run()
}

type Prompter interface {
	CaptureConfirm(promptStr string) (bool, error)
	CaptureHost(promptStr string) (string, error)
	CapturePort(promptStr string) (int, error)
	CaptureList(promptStr string, options []string) (string, error)
}

type realPrompter struct{}

func NewPrompter() Prompter {
	return &realPrompter{}
}

// CaptureConfirm asks a free-text yes/no question; only "yes" or "y"
// (any case) confirms.
func (*realPrompter) CaptureConfirm(promptStr string) (bool, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateNotEmpty,
	}

	answer, err := promptUIRunner(prompt)
	if err != nil {
		return false, err
	}
	return confirmPattern.MatchString(strings.TrimSpace(answer)), nil
}

func (*realPrompter) CaptureHost(promptStr string) (string, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateHost,
	}

	host, err := promptUIRunner(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(host), nil
}

func (*realPrompter) CapturePort(promptStr string) (int, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validatePort,
	}

	portStr, err := promptUIRunner(prompt)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(portStr))
}

func (*realPrompter) CaptureList(promptStr string, options []string) (string, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: options,
	}
	_, listDecision, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return listDecision, nil
}

func validateNotEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("an answer is required")
	}
	return nil
}

func validateHost(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("host is required")
	}
	if strings.Contains(input, "://") || strings.ContainsAny(input, "/ ") {
		return fmt.Errorf("invalid host %q: give a hostname or IP without scheme or path", input)
	}
	if _, _, err := net.SplitHostPort(input); err == nil {
		return fmt.Errorf("invalid host %q: give the port separately", input)
	}
	return nil
}

func validatePort(input string) error {
	port, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("invalid port %q", input)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
