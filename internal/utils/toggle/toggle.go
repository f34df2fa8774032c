// Package toggle parses command transform toggles given as "<order>=<bool>" specs.
package toggle

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse returns the toggles keyed by transform order. A spec without value turns the
// transform on.
func Parse(specs []string) (map[int]bool, error) {
	toggles := make(map[int]bool, len(specs))

	for _, spec := range specs {
		if spec == "" {
			return nil, fmt.Errorf("toggle spec cannot be empty")
		}

		key, value, hasValue := strings.Cut(spec, "=")
		order, err := strconv.Atoi(key)
		if err != nil || order < 1 {
			return nil, fmt.Errorf("invalid transform order %q", key)
		}
		if _, ok := toggles[order]; ok {
			return nil, fmt.Errorf("transform order %d toggled more than once", order)
		}

		on := true
		if hasValue {
			on, err = strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid toggle value %q for order %d", value, order)
			}
		}
		toggles[order] = on
	}

	return toggles, nil
}
