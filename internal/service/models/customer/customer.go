package customer

// Profile is the minimal view of a customer obtained from the customer
// service. It is fetched per request and never persisted by this service.
type Profile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Fallback returns the substitute profile used whenever the real customer
// cannot be resolved: the circuit is open, the lookup failed, or the customer
// service answered that no such customer exists.
func Fallback() Profile {
	return Profile{
		DisplayName: "Dummy",
		Email:       "dummy@test.de",
	}
}
