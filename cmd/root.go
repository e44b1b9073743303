package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"shelfsync/internal/cache"
	"shelfsync/internal/catalog"
	"shelfsync/internal/config"
	"shelfsync/internal/datastore"
	"shelfsync/internal/importer"
	"shelfsync/internal/lubimyczytac"
	"shelfsync/internal/nakanapie"
	"shelfsync/internal/ownedcsv"
	"shelfsync/internal/snapshot"
	"shelfsync/internal/webclient"
)

// CLI represents the complete command structure for the shelfsync application
type CLI struct {
	// Global flags
	Output string `short:"o" help:"Directory for snapshots and cover images" default:"."`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./shelfsync_cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Sync  SyncCmd  `cmd:"" help:"Reconcile the LubimyCzytać library into NaKanapie"`
	Crawl CrawlCmd `cmd:"" help:"Crawl one catalog and persist its snapshot"`
	Owned OwnedCmd `cmd:"" help:"Put every ISBN from a CSV export on the owned list"`
	Cache CacheCmd `cmd:"" help:"Manage the ISBN resolution cache"`
}

// SyncCmd represents the full reconciliation run
type SyncCmd struct {
	ProfileID     int    `help:"LubimyCzytać profile id to crawl"`
	Username      string `help:"NaKanapie profile name"`
	OwnListID     int    `help:"NaKanapie list id the owned shelf maps to"`
	MappingFile   string `help:"YAML file overriding the shelf-to-status mapping"`
	ForceDownload bool   `short:"f" help:"Re-crawl both catalogs even when snapshots exist"`
	DryRun        bool   `help:"Plan and report without logging in or mutating anything"`
}

// CrawlCmd represents the crawl command and its per-catalog subcommands
type CrawlCmd struct {
	Lubimyczytac CrawlSourceCmd `cmd:"" name:"lubimyczytac" help:"Crawl a LubimyCzytać library"`
	Nakanapie    CrawlSinkCmd   `cmd:"" name:"nakanapie" help:"Crawl a NaKanapie library"`
}

// CrawlSourceCmd crawls the LubimyCzytać side only
type CrawlSourceCmd struct {
	ProfileID int    `help:"LubimyCzytać profile id to crawl"`
	DB        string `help:"Also export the crawled books into this SQLite file"`
	Covers    bool   `help:"Download cover images alongside the snapshot"`
}

// CrawlSinkCmd crawls the NaKanapie side only
type CrawlSinkCmd struct {
	Username string `help:"NaKanapie profile name"`
	DB       string `help:"Also export the crawled books into this SQLite file"`
}

// OwnedCmd imports an ISBN column from a CSV export
type OwnedCmd struct {
	CSVFile   string `short:"f" help:"Path to the CSV export with an ISBN column"`
	Username  string `help:"NaKanapie profile name"`
	OwnListID int    `help:"NaKanapie list id the books are added to"`
}

// CacheCmd manages the resolution cache
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Delete all cached ISBN resolutions"`
}

// CacheClearCmd empties the cache tables
type CacheClearCmd struct{}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("shelfsync"),
		kong.Description("Sync a reading library from LubimyCzytać into NaKanapie."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(&cli); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("outputdir", cli.Output)

	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

// Run methods for each command

func (s *SyncCmd) Run(cli *CLI) error {
	profileID := s.ProfileID
	if profileID == 0 {
		profileID = config.ProfileID
	}
	username := s.Username
	if username == "" {
		username = config.Username
	}
	ownListID := s.OwnListID
	if ownListID == 0 {
		ownListID = config.OwnListID
	}

	if profileID == 0 {
		return fmt.Errorf("profile id is required (provide via --profile-id flag or lubimyczytac.profileid in config)")
	}
	if username == "" {
		return fmt.Errorf("username is required (provide via --username flag or nakanapie.username in config)")
	}
	if !s.DryRun && (config.Login == "" || config.Password == "") {
		return fmt.Errorf("credentials are required (set NAKANAPIE_LOGIN and NAKANAPIE_PASSWORD)")
	}

	mapping, err := buildMapping(s.MappingFile, ownListID)
	if err != nil {
		return err
	}

	source, sink := newClients()
	run := importer.New(source, sink, snapshot.NewStore(cli.Output), importer.Options{
		ProfileID:     profileID,
		Username:      username,
		Login:         config.Login,
		Password:      config.Password,
		Mapping:       mapping,
		OutputDir:     cli.Output,
		ForceDownload: s.ForceDownload,
		DryRun:        s.DryRun,
	})

	report, err := run.Run(context.Background())
	if err != nil {
		return err
	}
	report.Log()
	return nil
}

func (c *CrawlSourceCmd) Run(cli *CLI) error {
	profileID := c.ProfileID
	if profileID == 0 {
		profileID = config.ProfileID
	}
	if profileID == 0 {
		return fmt.Errorf("profile id is required (provide via --profile-id flag or lubimyczytac.profileid in config)")
	}

	source, _ := newClients()
	store := snapshot.NewStore(cli.Output)

	previous, err := store.Load(lubimyczytac.Source)
	if err != nil {
		return err
	}

	ctx := context.Background()
	books, _, err := source.Crawl(ctx, profileID, previous)
	if err != nil {
		return err
	}
	if err := store.Save(lubimyczytac.Source, books); err != nil {
		return err
	}
	if c.Covers {
		source.DownloadCovers(ctx, books, filepath.Join(cli.Output, "covers"))
	}
	if c.DB != "" {
		return datastore.ExportBooks(c.DB, lubimyczytac.Source, books)
	}
	return nil
}

func (c *CrawlSinkCmd) Run(cli *CLI) error {
	username := c.Username
	if username == "" {
		username = config.Username
	}
	if username == "" {
		return fmt.Errorf("username is required (provide via --username flag or nakanapie.username in config)")
	}

	_, sink := newClients()

	books, err := sink.Crawl(context.Background(), username)
	if err != nil {
		return err
	}
	if err := snapshot.NewStore(cli.Output).Save(nakanapie.Source, books); err != nil {
		return err
	}
	if c.DB != "" {
		return datastore.ExportBooks(c.DB, nakanapie.Source, books)
	}
	return nil
}

func (o *OwnedCmd) Run(cli *CLI) error {
	csvFile := o.CSVFile
	if csvFile == "" {
		csvFile = viper.GetString("owned.csvfile")
	}
	username := o.Username
	if username == "" {
		username = config.Username
	}
	ownListID := o.OwnListID
	if ownListID == 0 {
		ownListID = config.OwnListID
	}

	if csvFile == "" {
		return fmt.Errorf("input CSV file is required (provide via --csv-file flag or owned.csvfile in config)")
	}
	if username == "" {
		return fmt.Errorf("username is required (provide via --username flag or nakanapie.username in config)")
	}
	if ownListID == 0 {
		return fmt.Errorf("owned list id is required (provide via --own-list-id flag or nakanapie.ownlistid in config)")
	}
	if config.Login == "" || config.Password == "" {
		return fmt.Errorf("credentials are required (set NAKANAPIE_LOGIN and NAKANAPIE_PASSWORD)")
	}

	isbns, err := ownedcsv.ReadISBNs(csvFile)
	if err != nil {
		return err
	}

	_, sink := newClients()
	ctx := context.Background()

	if err := sink.Login(ctx, config.Login, config.Password); err != nil {
		return fmt.Errorf("nakanapie login failed: %w", err)
	}

	books, err := sink.Crawl(ctx, username)
	if err != nil {
		return err
	}
	index, _ := catalog.IndexByISBN(books)

	result := ownedcsv.Ensure(ctx, isbns, index, sink, ownedOptions(ownListID))
	result.Log()
	return nil
}

// ownedOptions builds the import options for the owned-CSV command. Books
// added from the export get want-to-read: owning a book says nothing about
// having read it.
func ownedOptions(ownListID int) ownedcsv.Options {
	return ownedcsv.Options{
		OwnListID:     ownListID,
		DefaultStatus: nakanapie.KindWantToRead,
	}
}

func (c *CacheClearCmd) Run(cli *CLI) error {
	db, err := cache.GetGlobalCache()
	if err != nil {
		return err
	}

	for table := range cache.ValidCacheTableNames {
		removed, err := db.Invalidate(table)
		if err != nil {
			return err
		}
		slog.Info("Cache table cleared", "table", table, "entries", removed)
	}
	return nil
}

// buildMapping returns the shelf-to-status mapping, either from a YAML file
// or the built-in default. The owned-list entry only exists when a list id
// is configured.
func buildMapping(path string, ownListID int) (catalog.Mapping, error) {
	if path != "" {
		return catalog.LoadMapping(path)
	}

	mapping := catalog.Mapping{
		lubimyczytac.ShelfRead:       {Status: nakanapie.KindRead},
		lubimyczytac.ShelfReading:    {Status: nakanapie.KindReading},
		lubimyczytac.ShelfWantToRead: {Status: nakanapie.KindWantToRead},
	}
	if ownListID != 0 {
		mapping[lubimyczytac.ShelfOwn] = catalog.Target{ListID: ownListID}
	}
	return mapping, nil
}

func newClients() (*lubimyczytac.Client, *nakanapie.Client) {
	httpClient := webclient.New()
	return lubimyczytac.NewClient(httpClient, lubimyczytac.DefaultBaseURL),
		nakanapie.NewClient(httpClient, nakanapie.DefaultBaseURL)
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
