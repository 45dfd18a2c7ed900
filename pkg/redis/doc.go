// Package redis opens go-redis clients with startup retries and exposes
// healthcheck and shutdown closures.
//
// Redis is optional for the service. When configured it backs the ledger
// read cache and the cross-process send claims; without it both fall back to
// in-process implementations.
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//		redis.WithPoolSize(20),
//		redis.WithRetry(5, time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	checks["redis"] = redis.Healthcheck(client)
package redis
