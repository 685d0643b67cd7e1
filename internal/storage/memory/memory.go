// Package memory provides in-memory implementations of the domain
// repositories. They mirror the PostgreSQL repositories' contracts and back
// the unit tests; nothing here is used in production wiring.
package memory
