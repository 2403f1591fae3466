package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenggwsx/DocuMind/internal/api"
	"github.com/fenggwsx/DocuMind/internal/client"
	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/fixtures"
	"github.com/fenggwsx/DocuMind/internal/logging"
	"github.com/fenggwsx/DocuMind/internal/session"
)

func main() {
	cfg := config.LoadClientConfig()

	// The alternate screen owns stdout, so diagnostics only go to a file.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "documind")
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logging.InitWriter(f, "debug")
	}

	backend := api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	runner := session.Runner{Auth: backend, Backend: backend, Timeout: cfg.RequestTimeout}
	model := client.NewApp(cfg, runner, fixtures.Catalog())

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("client exited: %v", err)
	}
}
