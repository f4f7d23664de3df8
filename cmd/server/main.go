package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/vigarblock/texas-holdem-poker-server/internal/config"
	"github.com/vigarblock/texas-holdem-poker-server/internal/mux"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/db"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/game"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/history"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/manager"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// run the db migrations
	db.Migrate()

	cfg := config.Instance()
	gameManager := manager.New(manager.Config{
		PlayerTimeout:  time.Duration(cfg.Game.PlayerTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Game.IdleTimeout) * time.Second,
		HandStartDelay: time.Duration(cfg.Game.HandStartDelay) * time.Second,
		Game: game.Options{
			MinBet:           cfg.Game.MinBet,
			StartingChips:    cfg.Game.StartingChips,
			MinBetMultiplier: cfg.Game.MinBetMultiplier,
		},
		Recorder: history.PostgresRecorder{},
	}, logrus.StandardLogger())

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, gameManager))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
