package main

import (
	"context"
	"database/sql"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/basel-ax/archaeo/internal/config"
	"github.com/basel-ax/archaeo/internal/infrastructure/gemini"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/repository"
	"github.com/basel-ax/archaeo/internal/service"
)

type commandContext struct {
	envFile *string
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	log        *logrus.Entry
	configErr  error
}

func newRootCommand() *cobra.Command {
	var envFile string
	var verbose bool
	ctx := &commandContext{envFile: &envFile, verbose: &verbose}

	rootCmd := &cobra.Command{
		Use:           "archaeo",
		Short:         "Archaeology assistant: restoration, translation, mosaic and vase analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newFindingsCommand(ctx))
	return rootCmd
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(*c.envFile)
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.LogLevel
		if *c.verbose {
			level = "debug"
		}
		l, err := logger.New(level, cfg.LogJSON)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.log = logrus.NewEntry(l)
	})
	return c.config, c.configErr
}

// openArchive returns a nil repository when archiving is disabled
func (c *commandContext) openArchive(ctx context.Context) (repository.FindingRepository, *sql.DB, error) {
	repo, db, err := repository.Open(ctx, c.config)
	if err != nil || repo == nil {
		return nil, nil, err
	}
	return repo, db, nil
}

func (c *commandContext) assistantService(findings repository.FindingRepository) *service.AssistantService {
	client := gemini.NewClient(gemini.Config{
		APIKey:     c.config.Gemini.APIKey,
		ImageModel: c.config.Gemini.ImageModel,
		TextModel:  c.config.Gemini.TextModel,
	})
	return service.NewAssistantService(client, findings, c.config)
}
