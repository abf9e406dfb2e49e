// Package service contains the task use cases. It sits between the HTTP
// handlers and the store: it maps request DTOs to domain tasks and back,
// parses list parameters (paging, sort, filters) into a store.TaskQuery, and
// wraps every mutation in a database transaction.
//
// Services receive their repository through constructor injection. The
// repository is an adapter over store.TaskStore that can be re-bound to a
// transaction with WithTx, which keeps the service independent of the
// PostgreSQL implementation.
//
// Expected failures are reported as *domain.ValidationError (bad input) or as
// an ok=false result (task absent). Anything else is wrapped in a
// *TaskServiceError and surfaces as an internal error.
package service
