package main

import (
	"os"

	"ai-terminal/internal/app"
)

// @title        AI Terminal Relay API
// @version      1.0
// @description  Stateless relay that forwards chat requests to OpenAI, Anthropic or DeepSeek and streams the reply.
// @host         localhost:8000
// @BasePath     /api
func main() {
	os.Exit(app.Run())
}
