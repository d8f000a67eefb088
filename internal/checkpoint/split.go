package checkpoint

import "strings"

// SplitLoadarch cuts a simulator's combined stdout stream into
// len(plan.Points) equal chunks, one per checkpoint, in plan order.
// lines_per_chunk = plan.Cmds.ExpectedLines / len(plan.Points). A
// mismatch between the observed line count and plan.Cmds.ExpectedLines
// is a fatal InvariantViolationError, since the simulator printed a
// different number of lines than the command plan predicted (spec.md
// §4.6).
func SplitLoadarch(plan Plan, loadarch string) ([]string, error) {
	lines := splitLines(loadarch)
	if len(lines) != plan.Cmds.ExpectedLines {
		return nil, invariantViolation(plan.Cmds.ExpectedLines, len(lines))
	}

	n := len(plan.Points)
	if plan.Cmds.ExpectedLines%n != 0 {
		return nil, invariantViolation(plan.Cmds.ExpectedLines, len(lines))
	}
	linesPerChunk := plan.Cmds.ExpectedLines / n

	chunks := make([]string, n)
	for i := 0; i < n; i++ {
		chunk := lines[linesPerChunk*i : linesPerChunk*(i+1)]
		chunks[i] = strings.Join(chunk, "\n")
		if len(chunk) > 0 {
			chunks[i] += "\n"
		}
	}
	return chunks, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
