package main

import (
	"context"
	"os"
	"os/signal"

	"sisassist-backend/cmd/sis-cli/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	commands.ExecuteContext(ctx)
}
