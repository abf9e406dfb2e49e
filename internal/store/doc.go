// Package store defines the persistence contracts for tasks: the TaskStore
// interface, the query and sort types it accepts, the transaction helper,
// and the sentinel errors every implementation returns.
package store
