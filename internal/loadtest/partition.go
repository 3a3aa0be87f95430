package loadtest

// Partition splits totalRequests into concurrency contiguous chunks that
// differ in size by at most one. The first totalRequests%concurrency
// chunks get the extra request; when there are fewer requests than
// workers the trailing chunks are 0.
//
// Returns nil if concurrency < 1.
func Partition(totalRequests, concurrency int) []int {
	if concurrency < 1 {
		return nil
	}
	if totalRequests < 0 {
		totalRequests = 0
	}

	base := totalRequests / concurrency
	remainder := totalRequests % concurrency

	chunks := make([]int, concurrency)
	for i := range chunks {
		chunks[i] = base
		if i < remainder {
			chunks[i]++
		}
	}
	return chunks
}
