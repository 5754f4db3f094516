package usecase

// BuildIndex is exported for testing
var BuildIndex = buildIndex
