package session

// ProgressPolicy computes the next percentage after a plain log line.
type ProgressPolicy func(current int) int

const (
	heuristicIncrement = 10
	heuristicCap       = 95
)

// HeuristicStep advances by a fixed step and stays below completion; only an
// artifact message moves progress to 100.
func HeuristicStep(current int) int {
	return min(current+heuristicIncrement, heuristicCap)
}

func clampPercent(p int) int {
	return max(0, min(p, 100))
}
