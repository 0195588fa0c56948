package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linesmerrill/rider-safety-api/api/handlers"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/logging"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	log := logging.New("main")

	if err := a.Initialize(); err != nil { //initialize database and router
		log.Fatalw("failed to initialize", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("rider-safety-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// heroku gives us 30 seconds after SIGTERM
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("failed to shut down http server", "error", err)
	}
	if err := a.Shutdown(ctx); err != nil {
		log.Errorw("failed to shut down background work", "error", err)
	}
	log.Info("rider-safety-api stopped")
}
