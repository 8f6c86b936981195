package main

import (
	// Load .env from the working directory so credentials can stay out of
	// the config file.
	_ "github.com/joho/godotenv/autoload"

	"wikipen/cmd/wikipen/commands"
)

func main() {
	commands.Execute()
}
