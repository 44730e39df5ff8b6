package main

import (
	"os"

	"story-shorts-pipeline/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env (local dev only, CI injects secrets)
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
