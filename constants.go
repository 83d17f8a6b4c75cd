package timestretch

// Algorithm names reported by [GetInfo].
const (
	algorithmWSOLA = "wsola"
)

// Worker defaults.
const (
	// sequentialSearch disables intra-frame search parallelism.
	sequentialSearch = 1

	// maxSearchWorkers caps Config.SearchWorkers.
	maxSearchWorkers = 256
)
