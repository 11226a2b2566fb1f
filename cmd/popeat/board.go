package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/popeat/popeat/internal/bootstrap"
	"github.com/popeat/popeat/internal/config"
	"github.com/popeat/popeat/internal/migrations"
	"github.com/popeat/popeat/internal/repository/sqlite"
	"github.com/popeat/popeat/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Launch the interactive order board",
	Long:  "Launch a terminal UI showing live orders and per-status counts.",
	RunE:  runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := bootstrap.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store := sqlite.NewStore(db)
	model := tui.NewModel(store)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}
