package cerr

// Reasons shared by every resource. Resource packages may define their own.
const (
	ReasonValidation      = "VALIDATION_ERROR"
	ReasonNotFound        = "NOT_FOUND"
	ReasonAlreadyExists   = "ALREADY_EXISTS"
	ReasonStoreFailure    = "STORE_FAILURE"
	ReasonUnauthenticated = "UNAUTHENTICATED"
	// ReasonOutcomeUnknown marks calls that may or may not have taken effect.
	ReasonOutcomeUnknown  = "OUTCOME_UNKNOWN"
)
