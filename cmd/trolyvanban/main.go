package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/donhulam/trolyvanban/internal/chat"
	"github.com/donhulam/trolyvanban/internal/config"
	"github.com/donhulam/trolyvanban/internal/gemini"
	"github.com/donhulam/trolyvanban/internal/history"
	"github.com/donhulam/trolyvanban/internal/server"
	"github.com/donhulam/trolyvanban/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath, err := history.DBPath(cfg.DataDir)
	if err != nil {
		return err
	}
	database, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	store := history.NewStore(history.NewSQLiteRepository(database))

	client, err := gemini.NewGoogleClient(ctx, cfg.APIKey, cfg.Model, cfg.TitleModel)
	if err != nil {
		return err
	}

	sess := session.New(client, store)
	refiner := chat.NewRefiner(client, sess, store)
	sess.OnDocumentChange(refiner.Reset)

	srv, err := server.New(sess, refiner, store)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := srv.Listen(cfg.ListenAddr); err != nil {
		return err
	}

	openBrowser("http://" + srv.Addr())

	return srv.Serve(ctx)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}
	if err := cmd.Start(); err != nil {
		log.Warn("opening browser", "err", err)
	}
}
