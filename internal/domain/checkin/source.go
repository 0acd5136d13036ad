package checkin

import "context"

// Source returns whatever pages it managed to read together with the error
// that stopped it; callers may keep the partial records.
type Source interface {
	FetchCheckIns(ctx context.Context, q Query) (FetchResult, error)
}
