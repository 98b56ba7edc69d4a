package credservice

const (
	// Error messages for credential verification operations
	ErrQueryingStore    = "error querying credential store"
	ErrNoMatchingRecord = "no matching credential record"
	ErrSeedingStore     = "failed to seed credential store"
)
