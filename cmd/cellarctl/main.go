// Command cellarctl runs imports, exports and stock counts against the
// cellar database without going through the web server.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
