package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	// CustomerIDPattern matches the owning customer id case-insensitively as
	// a substring.
	CustomerIDPattern string `json:"customerIdPattern,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	Offset            int    `json:"offset,omitempty"`
}
