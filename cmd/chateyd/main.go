package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/oPisiti/Chatey/internal/chat"
	"github.com/oPisiti/Chatey/pkg/wsserver"
)

func main() {
	addr := flag.String("addr", ":5050", "TCP address for the chat relay")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	hub := chat.NewHub(logger)
	server := wsserver.New(*addr, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := server.ListenAndServe(ctx, func(conn *websocket.Conn) {
		chat.HandleSession(hub, conn, logger)
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("relay stopped with error: %v", err)
	}
}
