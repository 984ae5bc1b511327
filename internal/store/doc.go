// Package store defines the persistence interfaces consumed by the engine
// and the transaction helpers shared by their implementations.
package store
