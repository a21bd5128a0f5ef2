// Package main is the HomeScout CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/homescout/homescout/internal/config"
	"github.com/homescout/homescout/internal/index"
	"github.com/homescout/homescout/internal/models"
	"github.com/homescout/homescout/internal/search"
	"github.com/homescout/homescout/internal/server"
	"github.com/homescout/homescout/internal/storage"
	"github.com/homescout/homescout/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/homescout/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "homescout server" from the project dir uses the
// project's config (including debug). Returns the config and the path that
// was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "reindex":
		runReindex()
	case "init-index":
		runInitIndex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("homescout version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (query translation, index maintenance, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if components.Orchestrator.IndexUsable() {
		components.Orchestrator.InitializeIndex()
	} else {
		logger.Warn("search index not usable, serving relational fallback only")
	}

	srv := server.NewServer(components.Orchestrator, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchTerm joins all positional args with spaces so multi-word terms
// work the same with or without shell quoting.
func buildSearchTerm(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage when server is not running)")
	city := fs.String("city", "", "filter by city (exact match)")
	minPrice := fs.Float64("min-price", 0, "minimum price")
	maxPrice := fs.Float64("max-price", 0, "maximum price")
	page := fs.Int("page", 1, "result page")
	size := fs.Int("size", 20, "results per page")
	sortBy := fs.String("sort", "relevance", "sort mode: relevance, price_asc, price_desc, date_desc, date_asc")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	query := &models.SearchQuery{
		Term:   buildSearchTerm(fs.Args()),
		Page:   *page,
		Size:   *size,
		SortBy: models.SortMode(*sortBy),
	}
	if *city != "" {
		query.City = city
	}
	if *minPrice > 0 {
		query.MinPrice = minPrice
	}
	if *maxPrice > 0 {
		query.MaxPrice = maxPrice
	}

	if *serverURL != "" {
		result, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		printSearchResult(result, *outputFormat)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	result := components.Orchestrator.Search(context.Background(), query)
	printSearchResult(result, *outputFormat)
}

func printSearchResult(result *models.SearchResult, format string) {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("%d result(s), page %d of %d\n\n", result.Total, result.Page, result.PageCount)
		for _, hit := range result.Data {
			owner := "owner unavailable"
			if hit.User != nil {
				owner = strings.TrimSpace(hit.User.FirstName + " " + hit.User.LastName)
			}
			fmt.Printf("  %s  %s, %s\n", hit.ID, hit.Title, hit.City)
			fmt.Printf("      %.0f %s | %.0f m2 | %s\n", hit.Price, hit.Currency, hit.Area, owner)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", format)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResult, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run against local storage directly)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/admin/reindex", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		var result models.ReindexResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			fmt.Fprintf(os.Stderr, "Decode response failed: %v\n", err)
			os.Exit(1)
		}
		reportReindex(result)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if !components.Orchestrator.InitializeIndex() {
		fmt.Fprintln(os.Stderr, "Search index is not usable; nothing to reindex")
		os.Exit(1)
	}
	reportReindex(components.Orchestrator.ReindexAll(context.Background()))
}

func reportReindex(result models.ReindexResult) {
	if !result.Success {
		fmt.Fprintln(os.Stderr, "Reindex did not run (index not usable)")
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d listing(s)\n", result.Count)
}

func runInitIndex() {
	fs := flag.NewFlagSet("init-index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if !components.Orchestrator.InitializeIndex() {
		fmt.Fprintln(os.Stderr, "Index initialization failed (index path not configured or unreachable)")
		os.Exit(1)
	}
	fmt.Printf("Index %q ready at %s\n", cfg.Index.Name, cfg.Index.Path)
}

// statusResponse is the shape of the GET /status response.
type statusResponse struct {
	Listings       int64                  `json:"listings"`
	IndexUsable    bool                   `json:"index_usable"`
	IndexDocs      uint64                 `json:"index_docs"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		listingCount, err := components.Storage.CountListings(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count listings failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Listings:    listingCount,
			IndexUsable: components.Orchestrator.IndexUsable(),
			IndexDocs:   components.Orchestrator.IndexDocCount(),
			Config: map[string]interface{}{
				"database_path": cfg.Storage.DatabasePath,
				"index_path":    cfg.Index.Path,
				"index_name":    cfg.Index.Name,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Index.Path)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("listings:          %d   # canonical rows in the relational store\n", status.Listings)
		fmt.Printf("index_usable:      %t\n", status.IndexUsable)
		fmt.Printf("index_docs:        %d   # documents in the search index\n", status.IndexDocs)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d   # database + index on disk\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"database_path", "index_path", "index_name"} {
				if v, ok := status.Config[key]; ok && v != "" {
					fmt.Printf("%-18s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = "/status"
	resp, err := http.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Gateway      *index.Gateway
	Orchestrator *search.Orchestrator
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Gateway != nil {
		_ = c.Gateway.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	gateway := index.NewGateway(cfg.Index.Path, cfg.Index.Name, logger)
	orchestrator := search.NewOrchestrator(store, gateway, cfg.Index.Name, logger)

	return &Components{
		Storage:      store,
		Gateway:      gateway,
		Orchestrator: orchestrator,
	}, nil
}

func printUsage() {
	fmt.Println(`homescout - listing search and indexing service

Usage:
  homescout server [flags]          Start the HTTP server
  homescout search [flags] <term>   Search listings
  homescout reindex [flags]         Rebuild the search index from storage
  homescout init-index [flags]      Create the search index if missing
  homescout status [flags]          Show storage/index status
  homescout version                 Show version
  homescout help                    Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/homescout/config.yaml)
  --debug            Enable debug logging (query translation, index maintenance, etc.)

Search Flags:
  --config string    Config file path (for local storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local storage.
  --city string      Filter by city (exact match)
  --min-price float  Minimum price
  --max-price float  Maximum price
  --page int         Result page (default: 1)
  --size int         Results per page (default: 20)
  --sort string      Sort mode: relevance, price_asc, price_desc, date_desc, date_asc
  --output string    Output format: text or json (default: text)

Reindex Flags:
  --config string    Config file path
  --server string    Server URL (empty = run against local storage directly)

Status Flags:
  --config string    Config file path (for local storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local storage.
  --output string    Output format: text or json (default: text)

Examples:
  homescout server
  homescout search two bedroom apartment
  homescout search --city Belgrade --max-price 200000 renovated
  homescout search --sort price_asc --output json penthouse
  homescout reindex
  homescout status --output json`)
}
