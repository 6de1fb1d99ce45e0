// Package pg provides PostgreSQL connection management for the auth
// service: pooled connections with retry, goose migrations, health
// checking, and error classification.
//
// # Connecting
//
//	cfg := config.MustLoad[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//		log.Fatal(err)
//	}
//
// Connect retries transient failures so simultaneous service and database
// restarts do not require manual intervention.
//
// # Transactions
//
// Storage layers accept Querier, the surface shared by *pgxpool.Pool and
// pgx.Tx. A caller opening a transaction attaches it to the context with
// WithTx; every store resolving its Querier via TxFromContext then joins
// the same transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	// token revocation and session clearing now commit or roll back together
//	if _, err := tokens.RevokeAll(ctx, userID); err != nil {
//		return err
//	}
//	if _, err := sessions.ClearUserSessions(ctx, userID); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// # Error Classification
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError, and
// IsTxClosedError wrap the pgx/pgconn error details behind predicates, so
// callers never match on SQLSTATE strings themselves.
package pg
