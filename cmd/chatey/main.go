package main

import (
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/oPisiti/Chatey/internal/client"
	"github.com/oPisiti/Chatey/internal/tui"
)

type config struct {
	ServerURL string `envconfig:"CHATEY_SERVER_URL" default:"ws://127.0.0.1:5050"`
	LogFile   string `envconfig:"CHATEY_LOG_FILE" default:"chatey.log"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to read configuration: %v", err)
	}

	// The terminal belongs to the TUI, so operational logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file %q: %v", cfg.LogFile, err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	conn, err := client.Dial(cfg.ServerURL, logger)
	if err != nil {
		log.Fatalf("could not reach the relay at %s: %v", cfg.ServerURL, err)
	}
	defer conn.Close()

	program := tea.NewProgram(tui.New(conn, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Printf("tui exited with error: %v", err)
		os.Exit(1)
	}
}
