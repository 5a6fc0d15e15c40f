package main

import (
	"os"

	"diderot/cmd/handlers"
	"diderot/internal/logger"
)

func main() {
	logger.Init()
	os.Exit(handlers.Execute())
}
