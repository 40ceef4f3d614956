package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/labadmin/internal/config"
	"github.com/jwalitptl/labadmin/internal/gateway"
	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "labadmin",
	Short: "Terminal admin client for the laboratory site",
	Long: `labadmin manages the laboratory site's content from the terminal.

BROWSE & EDIT:
  browse      Interactive table for a resource (search, filter, sort, delete)
  settings    Interactive form for a settings page (home, about, contact)

SCRIPTING:
  list        Print a resource as JSON
  get         Print one record as JSON
  create      Create a record from a JSON payload
  update      Update a record from a JSON payload
  delete      Delete a record by id

LOCAL DEVELOPMENT:
  serve       Run the fixture API server the client can point at

Configuration comes from config.yaml and LABADMIN_* environment
variables; see config.example.yaml.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// newGateway builds the gateway plus a logger. The TUI owns stdout, so
// logs go to the configured file, or nowhere.
func newGateway(cfg *config.Config) (*gateway.Gateway, func() error, error) {
	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	gw, err := gateway.New(cfg.API, log)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return gw, closeLog, nil
}

func openLogger(cfg *config.Config) (*logger.Logger, func() error, error) {
	if cfg.Log.File == "" {
		return logger.Nop(), func() error { return nil }, nil
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.NewFileLogger(cfg.Log.File, level)
}

func resourceArg(name string) (model.Resource, error) {
	res, ok := model.ResourceByName(name)
	if !ok {
		return model.Resource{}, fmt.Errorf("unknown resource %q, one of: %s", name, resourceNames())
	}
	return res, nil
}

func resourceNames() string {
	names := ""
	for i, res := range model.Catalog {
		if i > 0 {
			names += ", "
		}
		names += res.Name
	}
	return names
}

func pageArg(name string) (model.SettingsPage, error) {
	page, ok := model.PageByName(name)
	if !ok {
		names := ""
		for i, p := range model.Pages {
			if i > 0 {
				names += ", "
			}
			names += p.Name
		}
		return model.SettingsPage{}, fmt.Errorf("unknown settings page %q, one of: %s", name, names)
	}
	return page, nil
}
