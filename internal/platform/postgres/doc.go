// Package postgres provides the PostgreSQL implementation of the task store
// defined in the internal/store package, together with the embedded goose
// migrations that create its schema. Queries are composed with squirrel and
// executed through store.DBTX, so the same store runs against a pooled
// connection or inside a transaction.
package postgres
