package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the sqlite book store
	DefaultDatabasePath = "./pagescraper.db"

	// DefaultBoltPath is the default path when STORE_BACKEND=bolt
	DefaultBoltPath = "./pagescraper.bolt"
)

// DefaultUserAgent is sent with page image fetches during PDF assembly.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
