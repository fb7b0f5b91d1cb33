// Package menu asks the user to pick one entry of a list.
package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

var ErrNoOptions = errors.New("nothing to choose from")

// Selector returns the zero-based index of the chosen option.
type Selector interface {
	SelectOne(title string, options []string) (int, error)
}

// Prompt is the interactive terminal list. Every option is shown at once.
type Prompt struct{}

func (Prompt) SelectOne(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	sel := promptui.Select{
		Label: title,
		Items: options,
		Size:  len(options),
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "=> {{ . | cyan }}",
			Inactive: "   {{ . }}",
			Selected: "=> {{ . | green }}",
		},
		HideHelp: true,
	}
	i, _, err := sel.Run()
	if err != nil {
		return 0, fmt.Errorf("menu: %w", err)
	}
	return i, nil
}

// Fixed always picks the same index.
type Fixed int

func (f Fixed) SelectOne(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	i := int(f)
	if i < 0 || i >= len(options) {
		return 0, fmt.Errorf("menu: index %d out of range [0,%d)", i, len(options))
	}
	return i, nil
}

// Named picks the option equal to the name, or labelled "name(...)".
type Named string

func (n Named) SelectOne(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	name := string(n)
	for i, o := range options {
		if o == name || strings.HasPrefix(o, name+"(") {
			return i, nil
		}
	}
	return 0, fmt.Errorf("menu: no option named %q", name)
}
