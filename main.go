package main

import (
	"errors"
	"log"
	"os"

	"github.com/thiagokokada/gitdeck/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		if errors.Is(err, cmd.ErrCommandFailed) {
			os.Exit(1)
		}
		log.Fatalf("gitdeck: %v", err)
	}
}
