package chunk

import (
	"strings"
	"testing"

	"github.com/kaizenapp/kaizen/pkg/models"
)

func chunksWithDeps(deps ...[]int) []models.Chunk {
	chunks := make([]models.Chunk, len(deps))
	for i, d := range deps {
		chunks[i] = models.Chunk{Order: i, Dependencies: d}
	}
	return chunks
}

func TestDependencyWarnings_Clean(t *testing.T) {
	chunks := chunksWithDeps([]int{}, []int{0}, []int{0, 1})
	if got := DependencyWarnings(chunks); len(got) != 0 {
		t.Errorf("unexpected warnings: %v", got)
	}
}

func TestDependencyWarnings_OutOfRange(t *testing.T) {
	chunks := chunksWithDeps([]int{5}, []int{-1})

	warnings := DependencyWarnings(chunks)
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 entries", warnings)
	}
	if !strings.Contains(warnings[0], "out-of-range") {
		t.Errorf("warning %q should mention out-of-range", warnings[0])
	}
}

func TestDependencyWarnings_SelfReference(t *testing.T) {
	chunks := chunksWithDeps([]int{0})

	warnings := DependencyWarnings(chunks)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "depends on itself") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a self-reference warning", warnings)
	}
}

func TestDependencyWarnings_Cycle(t *testing.T) {
	// 0 -> 1 -> 2 -> 0
	chunks := chunksWithDeps([]int{1}, []int{2}, []int{0})

	warnings := DependencyWarnings(chunks)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "circular dependency") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a circular dependency warning", warnings)
	}
}

func TestFindCycle_NoCycleInDAG(t *testing.T) {
	// Diamond: 3 depends on 1 and 2, both depend on 0.
	chunks := chunksWithDeps([]int{}, []int{0}, []int{0}, []int{1, 2})
	if cycle := findCycle(chunks); cycle != nil {
		t.Errorf("findCycle on a DAG = %v, want nil", cycle)
	}
}

func TestFindCycle_IgnoresInvalidEdges(t *testing.T) {
	// Out-of-range and self edges are reported elsewhere and must not
	// trip or crash the cycle search.
	chunks := chunksWithDeps([]int{9, 0}, []int{-3})
	if cycle := findCycle(chunks); cycle != nil {
		t.Errorf("findCycle = %v, want nil", cycle)
	}
}
