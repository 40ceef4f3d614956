package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <resource>",
	Short: "Interactive table for a resource",
	Long: `Browse opens a full-screen table over one resource.

Keys:
  /          search (esc to leave the box)
  f          cycle the resource's designated filter
  1-9        sort by the n-th column, again to flip direction
  left/right page navigation
  enter      record detail
  d          delete the selected record (asks for confirmation)
  r          refresh from the server
  q          quit

Examples:
  labadmin browse members
  labadmin browse publications`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	res, err := resourceArg(args[0])
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

	model.SetDisplayLanguage(cfg.UI.Language)
	m := tui.NewBrowse(gw, res, cfg.UI.ItemsPerPage, cfg.UI.SkeletonRows)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
