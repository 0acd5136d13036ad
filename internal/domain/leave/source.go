package leave

import "context"

// Source returns every leave application overlapping the query range. On a
// failed page it returns the periods read so far along with the error.
type Source interface {
	FetchLeaves(ctx context.Context, q Query) (FetchResult, error)
}
