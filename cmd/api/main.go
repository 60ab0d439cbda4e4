package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Development)
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	cliApp := &cli.App{
		Name:  "backoffice",
		Usage: "order back-office API",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					return serve(ctx.Context, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply embedded schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "create the schema",
						Action: func(ctx *cli.Context) error {
							return migrate(ctx.Context, cfg, database.MigrateUp)
						},
					},
					{
						Name:  "down",
						Usage: "drop the schema",
						Action: func(ctx *cli.Context) error {
							return migrate(ctx.Context, cfg, database.MigrateDown)
						},
					},
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("backoffice exited", zap.Error(err))
	}
}
