package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/labadmin/internal/settings"
	"github.com/jwalitptl/labadmin/internal/tui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings <page>",
	Short: "Interactive form for a settings page",
	Long: `Settings opens the sectioned edit form of one settings page.
Edits stay local until ctrl+s sends everything, staged files included,
in a single request.

Keys:
  up/down    move between fields
  enter      edit the field (file fields ask for a path to stage)
  x          clear a staged file
  ctrl+s     save the page
  q          quit

Examples:
  labadmin settings home
  labadmin settings contact`,
	Args: cobra.ExactArgs(1),
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	page, err := pageArg(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, closeLog, err := newGateway(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctl := settings.NewController(page, gw, cfg.API.StorageBaseURL)
	m := tui.NewForm(ctl, page)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
