package teams

// Error message constants
const (
	ErrFailedFetchSolves = "Failed to fetch solves"
	ErrFailedFetchFails  = "Failed to fetch fails"
	ErrAdminOnly         = "Admin privileges required"
)

// FailSolveResponse is the administrative fail/solve tally of one team
type FailSolveResponse struct {
	Fails  int64 `json:"fails"`
	Solves int64 `json:"solves"`
}
