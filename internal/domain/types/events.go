package types

// Invalidation is emitted after the backend rejected a request with 401 and
// the stored credentials were dropped. RedirectTo names the route a UI should
// move to.
type Invalidation struct {
	Method     string
	Path       string
	Status     int
	RedirectTo string
}
