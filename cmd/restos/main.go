package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/restokit/restos/config"
	"github.com/restokit/restos/internal/adminapi"
	"github.com/restokit/restos/internal/app"
	"github.com/restokit/restos/internal/webserver"
)

var (
	configFile = flag.String("c", "/etc/restos.yml", "config file path")
	showVer    = flag.Bool("v", false, "print version and exit")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("restos %s\n", version)
		return
	}

	cfg := config.LoadConfig(*configFile)
	_ = os.MkdirAll(cfg.System.Workdir, 0o755)
	_ = os.MkdirAll(cfg.GetDataDir(), 0o755)
	_ = os.MkdirAll(cfg.GetLogDir(), 0o755)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.Init(application.Bus())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return webserver.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("shutting down")
		return webserver.Shutdown()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
