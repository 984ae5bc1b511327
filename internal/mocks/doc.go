// Package mocks provides in-memory test doubles for the store interfaces and
// supporting infrastructure so service tests can run without a database.
package mocks
