// Package database provides the sqlite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── books/           # Book store (library.Store)
//
// # Usage
//
//	db, err := database.NewDatabase("./pagescraper.db", logger)
//	store := books.NewRepository(db.DB)
//	reconciler := library.NewReconciler(store, registry, tabs, bus, logger)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add a compile-time interface check in internal/interfaces
package database
