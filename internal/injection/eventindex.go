package injection

import (
	"fmt"
	"strconv"
)

// EventIndexFromPath parses the event number from a map path: the last
// contiguous run of digits in the name wins, so directory components with
// digits earlier in the path do not interfere.
func EventIndexFromPath(path string) (int, error) {
	end := -1
	start := -1
	for i := len(path) - 1; i >= 0; i-- {
		c := path[i]
		if c >= '0' && c <= '9' {
			if end == -1 {
				end = i + 1
			}
			start = i
			continue
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return 0, fmt.Errorf("event index: no digits in %q", path)
	}
	n, err := strconv.Atoi(path[start:end])
	if err != nil {
		return 0, fmt.Errorf("event index: parsing %q: %w", path[start:end], err)
	}
	return n, nil
}
