package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"golang.org/x/term"

	"obsmacros/api"
	"obsmacros/config"
	"obsmacros/models"
	"obsmacros/obs"
	"obsmacros/service"
	"obsmacros/tui"
)

const (
	logDir         = "log"
	connectTimeout = 10 * time.Second
	shutdownWait   = 5 * time.Second
)

// stdin is shared by every credential prompt so retries don't lose
// lines an earlier reader buffered.
var stdin = bufio.NewReader(os.Stdin)

// setupLogging creates a log file in the log directory with timestamp
// Returns the log file handle (caller should defer Close())
func setupLogging() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file with timestamp: log/2025-12-08_21-52-35.log
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, timestamp+".log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// The terminal belongs to the menu once it starts, so only the file
	// receives log lines.
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("📝 Logging to: %s", logPath)
	return logFile, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting OBS macros...")

	if err := run(context.Background()); err != nil {
		log.Printf("❌ %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Println("Bye")
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := obs.NewClient()
	creds, err := connect(ctx, client, cfg.Credentials, cfg.Loaded)
	if err != nil {
		return err
	}
	defer client.Close()
	cfg.Credentials = creds

	// Prompts above keep the default Ctrl+C behavior.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ms := service.NewMacroService(cfg.Config, config.ConfigPath)

	// History is optional; macros still run without it.
	var recorder service.Recorder
	var history *service.HistoryStore
	db, err := config.InitDatabase(config.DatabasePath)
	if err != nil {
		log.Printf("⚠️ History disabled: %v", err)
	} else {
		defer db.Close()
		history = service.NewHistoryStore(db)
		recorder = history
	}

	wsHub := api.NewWebSocketHub()
	go wsHub.Run()

	dispatcher := service.NewDispatcher(ms, client, recorder, wsHub)
	defer dispatcher.Stop()

	if apiCfg := ms.API(); apiCfg.Enabled {
		srv := startAPI(apiCfg.Listen, ms, dispatcher, history, wsHub)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Printf("HTTP shutdown: %v", err)
			}
		}()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer screen.Fini()

	app := tui.NewApp(screen, ms, dispatcher, client)
	client.OnStateChange(app.NotifyConnection)
	app.NotifyConnection(client.State())
	if cfg.Dropped > 0 {
		app.SetStatus(fmt.Sprintf("Skipped %d macro(s) that could not be decoded", cfg.Dropped))
	}

	// Signals arrive outside the event loop; a Ctrl+C event unwinds it.
	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	}()

	app.Run(ctx)
	return nil
}

// loadConfig reads config.json. A missing or unreadable file starts an
// empty config whose credentials are asked for interactively.
func loadConfig() (*loadedConfig, error) {
	fmt.Print("Loading config...")
	cfg, err := config.Load(config.ConfigPath)
	if err == nil {
		fmt.Println("OK")
		return &loadedConfig{Config: cfg, Loaded: true}, nil
	}
	if !config.IsRecoverable(err) {
		fmt.Println("FAILED")
		return nil, err
	}

	if errors.Is(err, config.ErrNotFound) {
		fmt.Println("Config not found")
	} else {
		fmt.Printf("Config unreadable (%v)\n", err)
	}
	log.Printf("⚠️ Starting with an empty config: %v", err)
	return &loadedConfig{Config: config.New()}, nil
}

type loadedConfig struct {
	*config.Config
	Loaded bool
}

// connect keeps asking for credentials until the server accepts them.
// Stored credentials are tried first without prompting.
func connect(ctx context.Context, client *obs.Client, creds models.Credentials, stored bool) (models.Credentials, error) {
	if !stored {
		var err error
		if creds, err = promptCredentials(); err != nil {
			return creds, err
		}
	}

	for {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := client.Connect(cctx, creds)
		cancel()
		if err == nil {
			log.Printf("✅ Connected to OBS at %s:%d", creds.Host, creds.Port)
			return creds, nil
		}
		if ctx.Err() != nil {
			return creds, ctx.Err()
		}

		log.Printf("❌ Connect to %s:%d failed: %v", creds.Host, creds.Port, err)
		fmt.Println("Couldn't connect to OBS. Check host, port and password.")
		if creds, err = promptCredentials(); err != nil {
			return creds, err
		}
	}
}

func promptCredentials() (models.Credentials, error) {
	var readPassword func() (string, error)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		readPassword = func() (string, error) {
			pw, err := term.ReadPassword(fd)
			fmt.Println()
			return string(pw), err
		}
	}
	return tui.PromptCredentials(stdin, os.Stdout, readPassword)
}

func startAPI(addr string, ms *service.MacroService, d *service.Dispatcher, hs *service.HistoryStore, wsHub *api.WebSocketHub) *http.Server {
	if addr == "" {
		addr = config.DefaultAPIListen
	}
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	api.SetupRoutes(router, ms, d, hs, wsHub)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		log.Printf("🌐 API listening on http://%s", addr)
		log.Printf("🌐 Events on ws://%s/ws", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ API server stopped: %v", err)
		}
	}()
	return srv
}
