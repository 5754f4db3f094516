package cli

// GetIndexConfig is exported for testing
var GetIndexConfig = getIndexConfig

// PrintMatch is exported for testing
var PrintMatch = printMatch
