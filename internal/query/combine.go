package query

// ViewState is the state of a view that depends on several queries.
type ViewState string

const (
	ViewLoading ViewState = "loading"
	ViewReady   ViewState = "ready"
	ViewEmpty   ViewState = "empty"
	ViewError   ViewState = "error"
)

// Combine folds the states a view depends on into a single ViewState. A query
// that failed without ever producing data is an error; a query still waiting
// for its first payload keeps the view loading. Queries holding stale data
// after a failed refresh count as resolved. empty reports whether the
// transformed view has nothing to show once everything resolved.
func Combine(empty bool, states ...State) ViewState {
	loading := false
	for _, s := range states {
		if s.Status == Failure && !s.HasData {
			return ViewError
		}
		if s.Pending() {
			loading = true
		}
	}
	switch {
	case loading:
		return ViewLoading
	case empty:
		return ViewEmpty
	default:
		return ViewReady
	}
}
