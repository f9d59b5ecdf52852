package main

import (
	"log"

	"github.com/data-tales/data-sources/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ data-sources failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ data-sources stopped with error: %v", err)
	}
}
