package chunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// DependencyWarnings inspects a chunk batch for dependency defects:
// references outside the batch and circular references. Defects are
// reported as warnings rather than rejected, so a usable batch still
// reaches the caller with its problems made visible.
func DependencyWarnings(chunks []models.Chunk) []string {
	var warnings []string

	for i, c := range chunks {
		for _, dep := range c.Dependencies {
			if dep < 0 || dep >= len(chunks) {
				warnings = append(warnings,
					fmt.Sprintf("chunk %d references out-of-range dependency %d", i, dep))
			}
			if dep == i {
				warnings = append(warnings,
					fmt.Sprintf("chunk %d depends on itself", i))
			}
		}
	}

	if cycle := findCycle(chunks); len(cycle) > 0 {
		parts := make([]string, len(cycle))
		for i, idx := range cycle {
			parts[i] = strconv.Itoa(idx)
		}
		warnings = append(warnings,
			"circular dependency detected: "+strings.Join(parts, " -> "))
	}

	return warnings
}

// findCycle runs a DFS over the dependency graph and returns the first
// cycle found as a sequence of chunk indices, or nil.
func findCycle(chunks []models.Chunk) []int {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make([]int, len(chunks))

	var cycle []int
	var visit func(idx int, path []int) bool
	visit = func(idx int, path []int) bool {
		if state[idx] == visited {
			return false
		}
		if state[idx] == visiting {
			start := 0
			for i, p := range path {
				if p == idx {
					start = i
					break
				}
			}
			cycle = append(append([]int{}, path[start:]...), idx)
			return true
		}

		state[idx] = visiting
		for _, dep := range chunks[idx].Dependencies {
			if dep < 0 || dep >= len(chunks) || dep == idx {
				continue // reported separately
			}
			if visit(dep, append(path, idx)) {
				return true
			}
		}
		state[idx] = visited
		return false
	}

	for i := range chunks {
		if state[i] == unvisited {
			if visit(i, nil) {
				return cycle
			}
		}
	}
	return nil
}
