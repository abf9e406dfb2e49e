// Package domain contains the task entity, its closed status and priority
// sets, and the error kinds shared by every layer. It has no dependencies on
// storage or transport.
package domain
