// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with the connection,
// connection and migration helpers the service needs.
//
// [Connect] parses the URL, applies pool limits from [Config] and retries
// until the database answers a ping or the attempts run out:
//
//	pool, err := db.Connect(ctx, db.Config{URL: os.Getenv("OUTREACH_DATABASE_URL")})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
// [Migrate] applies embedded goose migrations through a database/sql view of
// the same pool; [Run] also supports rolling back one step and printing the
// status table.
// [Healthcheck] and [Shutdown] return closures for readiness probes and
// shutdown hooks.
//
// Errors are sentinels joined with the underlying cause, so callers match
// them with errors.Is.
package db
