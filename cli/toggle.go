package cli

import (
	"sort"
	"strings"

	"facette.io/natsort"
	"github.com/manifoldco/promptui"
)

const doneItem = "[Done]"

// selectFunc shows items and returns the index picked.
type selectFunc func(label string, items []string) (int, error)

func promptSelect(label string, items []string) (int, error) {
	sel := &promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
		Searcher: func(input string, index int) bool {
			if index == 0 || len(input) == 0 {
				return false
			}

			return strings.HasPrefix(items[index], input)
		},
	}

	idx, _, err := sel.Run()

	return idx, err
}

// Toggle lets the user flip boolean switches until they pick [Done]. Choices
// are listed in natural order with their current value. It returns the new
// values of every choice; selected is not modified.
func Toggle(label string, choices []string, selected map[string]bool) (map[string]bool, error) {
	return toggle(label, choices, selected, promptSelect)
}

func toggle(label string, choices []string, selected map[string]bool, run selectFunc) (map[string]bool, error) {
	values := make(map[string]bool, len(choices))
	for _, c := range choices {
		values[c] = selected[c]
	}

	if len(choices) == 0 {
		return values, nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	sort.Slice(names, func(a, b int) bool {
		return natsort.Compare(names[a], names[b])
	})

	for {
		items := make([]string, 0, len(names)+1)
		items = append(items, doneItem)

		for _, name := range names {
			items = append(items, toggleItem(name, values[name]))
		}

		idx, err := run(label, items)
		if err != nil {
			return nil, err
		}

		if idx <= 0 || idx > len(names) {
			return values, nil
		}

		name := names[idx-1]
		values[name] = !values[name]
	}
}

func toggleItem(name string, on bool) string {
	if on {
		return name + " [on]"
	}

	return name + " [off]"
}
