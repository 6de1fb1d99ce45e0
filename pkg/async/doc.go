// Package async provides a minimal Future abstraction for sharing the result
// of a single in-flight computation between many waiting goroutines.
//
// A Future resolves exactly once. Every caller of Await observes the same
// value and error, which makes the type a natural building block for
// request-collapsing: register one Future per unit of work, let the first
// requester run the work, and have every concurrent duplicate wait on the
// shared result instead of repeating it.
//
//	future := async.Exec(ctx, func(ctx context.Context) (string, error) {
//		return expensiveLookup(ctx, key)
//	})
//
//	// Any number of goroutines:
//	value, err := future.Await()
//
// AwaitWithTimeout bounds the wait:
//
//	value, err := future.AwaitWithTimeout(5 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		// computation still running; the Future remains valid
//	}
package async
