package main

import (
	"github.com/joho/godotenv"

	"rag/internal/cli"
)

func main() {
	// Provider API keys are conventionally kept in a .env file next to the
	// documents; absence is fine, the environment may be set another way.
	_ = godotenv.Load()

	cli.Execute()
}
