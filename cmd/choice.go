package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// pickSeries converts a 1-based series choice into an index.
func pickSeries(choice, count int) (int, error) {
	if choice < 1 || choice > count {
		return -1, fmt.Errorf("invalid series choice: %d results found but result %d was requested", count, choice)
	}
	return choice - 1, nil
}

// pickEpisode converts "latest" or a 1-based episode number into an index.
func pickEpisode(choice string, count int) (int, error) {
	if count == 0 {
		return -1, fmt.Errorf("no episodes to choose from")
	}

	choice = strings.TrimSpace(choice)
	if strings.EqualFold(choice, "latest") {
		return count - 1, nil
	}

	n, err := strconv.Atoi(choice)
	if err != nil {
		return -1, fmt.Errorf("invalid episode choice %q: use 'latest' or a number", choice)
	}
	if n < 1 || n > count {
		return -1, fmt.Errorf("invalid episode choice: %d episodes found but episode %d was requested", count, n)
	}
	return n - 1, nil
}
