package config

// DefaultIndexName is the search index used for listing documents.
const DefaultIndexName = "listings"

// ApplyDefaults sets default values for any zero values in cfg.
// Index.Path is left alone: an unset path means the index is disabled.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/homescout/data/db/listings.db"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = DefaultIndexName
	}
	if cfg.Search.SuggestionLimit == 0 {
		cfg.Search.SuggestionLimit = 5
	}
}
