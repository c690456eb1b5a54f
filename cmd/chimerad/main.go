package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"chimera/internal/accesslog"
	"chimera/internal/config"
	"chimera/internal/content"
	"chimera/internal/htmlcache"
	"chimera/internal/imagesize"
	"chimera/internal/peers"
	"chimera/internal/response"
	"chimera/internal/search"
	"chimera/internal/version"
	"chimera/internal/watch"
)

// application wires together every component a request might touch:
// the document parser, peer index, template renderer, HTML cache,
// search index, and the file watcher that keeps them all current.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	wg     sync.WaitGroup

	formDecoder      *form.Decoder
	parser           *content.Parser
	peerIndex        *peers.Index
	renderer         *response.HtmlRenderer
	cache            *htmlcache.Cache
	searchIndex      *search.Index
	watcher          *watch.Watcher
	accessLog        *accesslog.Writer
	imageSizes       *imagesize.Cache
	staticFileServer http.Handler
}

func main() {
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error(err.Error(), "trace", string(debug.Stack()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	_ = godotenv.Load()

	configPath := flag.String("config", "chimera.toml", "path to the chimera configuration file")
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if lvl, ok := parseLogLevel(cfg.LogLevel); ok {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: lvl}))
	}

	app, err := newApplication(logger, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	return app.serveHTTP()
}

// newApplication constructs every long-lived component and wires the
// file watcher's broadcast to each subscriber that needs to react to
// changes (the HTML cache, the search index, and, when configured,
// the image-size cache).
func newApplication(logger *slog.Logger, cfg *config.Config) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	app.formDecoder = form.NewDecoder()
	app.parser = content.New(logger, cfg.HighlightStyle)
	app.peerIndex = peers.New(cfg.HomeDir(), cfg.IndexFile)
	app.staticFileServer = newStaticFileServer()

	renderer, err := response.New(cfg.TemplateDir(), cfg)
	if err != nil {
		return nil, err
	}
	app.renderer = renderer

	app.cache = htmlcache.New(logger, cfg.MaxCacheSize)

	searchIndex, err := search.Open(logger, cfg.SearchDir(), cfg.SearchAnalyzer)
	if err != nil {
		return nil, err
	}
	app.searchIndex = searchIndex

	if cfg.ImageSizeFile != "" {
		app.imageSizes = imagesize.Load(logger, cfg.ImageSizeFile)
		app.renderer.SetImageSizer(app.imageSizes)
	}

	if accessLog, err := accesslog.Open(cfg.LogDir()); err != nil {
		logger.Warn("failed to open access log", "error", err)
	} else {
		app.accessLog = accessLog
	}

	watcher, err := watch.New(logger, time.Duration(cfg.WatchDebounceMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	app.watcher = watcher

	if err := watcher.AddRecursive(cfg.HomeDir()); err != nil {
		logger.Warn("failed to watch document root", "error", err)
	}
	watcher.Add(cfg.TemplateDir())

	app.cache.WatchInvalidation(watcher.Subscribe())
	app.searchIndex.WatchChanges(watcher.Subscribe())
	if app.imageSizes != nil {
		app.imageSizes.WatchInvalidation(watcher.Subscribe())
	}

	allMarkdown, err := peers.ListAllMarkdown(cfg.HomeDir())
	if err != nil {
		logger.Warn("failed to enumerate document root for search seeding", "error", err)
	} else {
		app.searchIndex.Scan(cfg.HomeDir(), allMarkdown)
	}

	return app, nil
}

// close releases every long-lived component's resources. It's safe to
// call on a partially-constructed application.
func (app *application) close() {
	if app.watcher != nil {
		app.watcher.Close()
	}
	if app.cache != nil {
		app.cache.Close()
	}
	if app.searchIndex != nil {
		app.searchIndex.Close()
	}
	if app.accessLog != nil {
		app.accessLog.Close()
	}
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warning", "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func slogErrorLog(logger *slog.Logger) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), slog.LevelError)
}
