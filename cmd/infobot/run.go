package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/infobot/core/bootstrap"
	corecmd "github.com/m3rciful/infobot/core/cmd"
	"github.com/m3rciful/infobot/internal/audience"
	"github.com/m3rciful/infobot/internal/bot"
	"github.com/m3rciful/infobot/internal/config"
	"github.com/m3rciful/infobot/internal/content"
	"github.com/m3rciful/infobot/internal/navigation"
)

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot (long polling or webhook)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath:   configPath,
				ConfigEnvVar: "CONFIG_PATH",
				LoadConfig:   loadConfig,
				Bootstrap:    bootstrapApp,
				Context:      cmd.Context(),
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (default: $CONFIG_PATH, else environment only)")
	return cmd
}

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrapApp initializes logging and storage, loads the content bundle
// and assembles the bot.
func bootstrapApp(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	var (
		store  audience.Store = audience.NewMemory()
		onStop func(context.Context) error
	)
	if res.DB != nil {
		db := res.DB
		store = audience.NewPostgres(db)
		onStop = func(context.Context) error { return db.Close() }
	}
	fail := func(err error) (corecmd.TelegramApp, error) {
		if onStop != nil {
			_ = onStop(context.Background())
		}
		return nil, err
	}

	catalog, err := content.Load(cfg.Content.Path, content.WithTopicKeys(navigation.IsDetailKey))
	if err != nil {
		return fail(err)
	}
	app, err := bot.New(bot.Options{
		Config:   cfg,
		Catalog:  catalog,
		Audience: store,
		OnStop:   onStop,
	})
	if err != nil {
		return fail(err)
	}
	return app, nil
}
