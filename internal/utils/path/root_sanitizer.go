package pathutils

import (
	"path/filepath"
	"strings"
)

// MonorepoRootSanitizer normalizes monorepo root inputs consistently across commands.
type MonorepoRootSanitizer struct {
	homeExpander *HomeExpander
}

// NewMonorepoRootSanitizer constructs a MonorepoRootSanitizer with default behavior.
func NewMonorepoRootSanitizer() *MonorepoRootSanitizer {
	return NewMonorepoRootSanitizerWithExpander(nil)
}

// NewMonorepoRootSanitizerWithExpander constructs a MonorepoRootSanitizer using the provided expander.
func NewMonorepoRootSanitizerWithExpander(homeExpander *HomeExpander) *MonorepoRootSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &MonorepoRootSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims whitespace, expands the user's home directory, cleans paths, and removes duplicates.
func (sanitizer *MonorepoRootSanitizer) Sanitize(candidateRoots []string) []string {
	expander := NewHomeExpander()
	if sanitizer != nil && sanitizer.homeExpander != nil {
		expander = sanitizer.homeExpander
	}

	seenRoots := make(map[string]struct{}, len(candidateRoots))
	sanitizedRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedRoot := strings.TrimSpace(candidateRoot)
		if len(trimmedRoot) == 0 {
			continue
		}

		cleanedRoot := filepath.Clean(expander.Expand(trimmedRoot))
		if _, alreadySeen := seenRoots[cleanedRoot]; alreadySeen {
			continue
		}
		seenRoots[cleanedRoot] = struct{}{}
		sanitizedRoots = append(sanitizedRoots, cleanedRoot)
	}

	if len(sanitizedRoots) == 0 {
		return nil
	}
	return sanitizedRoots
}
