package testutil

import (
	"context"
	"fmt"
	"slices"
)

// Line is one scripted ReadLine answer. Cancel dismisses the prompt.
type Line struct {
	Text   string
	Cancel bool
}

// Prompter answers prompts from a script and records what it was asked.
type Prompter struct {
	Lines      []Line
	Selections [][]string

	// Asked records the title and initial value of every ReadLine call.
	Asked []string
	// Offered records the items of every Select call.
	Offered [][]string
}

// ReadLine implements the prompter contract.
func (p *Prompter) ReadLine(_ context.Context, title, initial string) (string, bool, error) {
	p.Asked = append(p.Asked, title+"="+initial)
	if len(p.Lines) == 0 {
		return "", false, fmt.Errorf("testutil: unexpected prompt %q", title)
	}
	l := p.Lines[0]
	p.Lines = p.Lines[1:]
	if l.Cancel {
		return "", false, nil
	}
	return l.Text, true, nil
}

// Select implements the prompter contract. A scripted choice not among the
// offered items is an error.
func (p *Prompter) Select(_ context.Context, title string, items []string, _ bool) ([]string, error) {
	p.Offered = append(p.Offered, slices.Clone(items))
	if len(p.Selections) == 0 {
		return nil, fmt.Errorf("testutil: unexpected selection %q", title)
	}
	chosen := p.Selections[0]
	p.Selections = p.Selections[1:]
	for _, c := range chosen {
		if !slices.Contains(items, c) {
			return nil, fmt.Errorf("testutil: %q not offered in %q", c, title)
		}
	}
	return chosen, nil
}
