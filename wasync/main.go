package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	up "go.mau.fi/util/configupgrade"
	"go.mau.fi/util/dbutil"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/waforge/wasync/core/connector"
	"github.com/waforge/wasync/core/wmeow"
)

// Filled at build time with the -X linker flag.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath = flag.String("config", "config.yaml", "path to the config file")
var version = flag.Bool("version", false, "print the version and exit")

func main() {
	flag.Parse()
	if *version {
		fmt.Printf("wasync %s (%s, built %s)\n", Tag, Commit, BuildTime)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}
	log := setupLog(cfg.LogLevel)

	db, err := openDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	wconn := &connector.WhatsappConnector{
		Config:     cfg,
		Log:        log,
		NewSession: wmeow.NewSession,
		Presenter:  terminalPresenter{out: os.Stdout},
	}
	wconn.Init(db)

	ctx, cancel := context.WithCancel(log.WithContext(context.Background()))
	defer cancel()
	err = wconn.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start connector")
	}

	client := wconn.NewClient()
	go handleSignals(cancel, log)
	go commandLoop(ctx, cancel, client, log)

	err = client.Run(ctx)
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		log.Info().Msg("Shutting down")
	case errors.Is(err, connector.ErrLoggedOut):
		log.Fatal().Msg("Stopping: logged out, delete the database to pair again")
	default:
		log.Fatal().Err(err).Msg("Session loop failed")
	}
}

func loadConfig(path string) (cfg connector.Config, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		err = os.WriteFile(path, []byte(connector.ExampleConfig), 0o600)
		if err != nil {
			return cfg, fmt.Errorf("failed to write example config: %w", err)
		}
	}
	data, _, err := up.Do(path, true, cfg.Upgrader())
	if err != nil {
		return cfg, fmt.Errorf("failed to upgrade config: %w", err)
	}
	err = yaml.Unmarshal(data, &cfg)
	return cfg, err
}

func setupLog(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

func openDatabase(path string, log zerolog.Logger) (*dbutil.Database, error) {
	rawDB, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)",
		path,
	))
	if err != nil {
		return nil, err
	}
	db, err := dbutil.NewWithDB(rawDB, "sqlite3")
	if err != nil {
		return nil, err
	}
	db.Log = dbutil.ZeroLogger(log.With().Str("db_section", "main").Logger())
	return db, nil
}

func handleSignals(cancel context.CancelFunc, log zerolog.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Info().Stringer("signal", sig).Msg("Interrupt received, stopping")
	cancel()
}

// commandLoop is the operator console on stdin:
//
//	send <jid-or-phone> <text>
//	quit
func commandLoop(ctx context.Context, cancel context.CancelFunc, client *connector.WhatsappClient, log zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "send":
			recipient, text := "", ""
			if len(fields) > 1 {
				recipient = fields[1]
			}
			if len(fields) > 2 {
				text = strings.Join(fields[2:], " ")
			}
			receipt, err := client.SendText(ctx, recipient, text)
			if err != nil {
				log.Warn().Err(err).Msg("Send rejected")
				continue
			}
			log.Info().Object("receipt", receipt).Msg("Send accepted")
		case "quit", "exit":
			cancel()
			return
		default:
			log.Warn().Str("command", fields[0]).Msg("Unknown command (try: send <jid> <text>)")
		}
	}
}
