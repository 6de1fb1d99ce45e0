// Package health provides liveness and readiness probe handlers for
// orchestrator health checks.
package health
