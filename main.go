package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NataPeralta/Store/config"
	"github.com/NataPeralta/Store/internal/adminapi"
	"github.com/NataPeralta/Store/internal/app"
	"github.com/NataPeralta/Store/internal/shopapi"
	"github.com/NataPeralta/Store/internal/webserver"
)

var (
	// Injected at build time.
	BuildVersion string
	ReleaseDate  string

	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	confFile = flag.String("c", "store.yml", "config file")
	initDb   = flag.Bool("x", false, "drop and recreate the database tables")
)

func printVersion() {
	fmt.Fprintf(os.Stdout, "store version: %s, release: %s\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		return
	}

	webserver.Init(application)
	shopapi.Init(application)
	adminapi.Init(application)

	g := new(errgroup.Group)
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sc
		zap.S().Infof("received signal %s, shutting down", sig)
		return webserver.Shutdown()
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server stopped: %s", err)
	}
}
