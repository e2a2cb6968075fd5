package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// Input prompts for text input with a default value.
func Input(label string, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	result, err := p.Run()
	return strings.TrimSpace(result), wrapError(err)
}

// InputPort prompts for a TCP port (1-65535).
func InputPort(label string, defaultValue int) (int, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  strconv.Itoa(defaultValue),
		Validate: ValidatePort,
	}

	result, err := p.Run()
	if err != nil {
		return 0, wrapError(err)
	}

	port, _ := strconv.Atoi(strings.TrimSpace(result))
	return port, nil
}

// Select prompts for one of items and returns it.
func Select(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "* {{ . | green }}",
		},
	}

	_, result, err := p.Run()
	return result, wrapError(err)
}

// ValidatePort accepts integers between 1 and 65535.
func ValidatePort(input string) error {
	port, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be a valid port (1-65535)")
	}
	return nil
}
