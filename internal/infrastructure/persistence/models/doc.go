// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: AggregateModel (ID, timestamps, version) and the migration list
// - catalog.go: Product
// - cash.go: CashSession, CashMovement
// - trade.go: Order, Sale, Purchase and their child rows
package models
