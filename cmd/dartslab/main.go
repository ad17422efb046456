package main

import (
	"context"
	"os"

	"github.com/dartslab/dartslab/internal/cli"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	defer logging.Sync()

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
