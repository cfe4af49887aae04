package instrumentation

// Metric label values are kept to closed sets so the time series count
// stays bounded. Tool names, service names, operation types, and error
// kinds are all drawn from fixed catalogs; free-form values such as
// calendar IDs, event IDs, or resource names must never become labels.

// Common operation types for Google API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationEnd    = "end"
	OperationQuery  = "query"
)
