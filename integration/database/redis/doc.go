// Package redis provides Redis client initialization and health checking.
//
// The auth service uses Redis for the distributed rate-limiter buckets that
// throttle remember-me validation attempts across service instances.
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Connect validates the URL, retries transient failures, and verifies
// connectivity with a ping before returning the client.
package redis
