package main

import (
	"log"

	"socialnet/internal/dialogs"
)

func main() {
	if err := dialogs.Run(); err != nil {
		log.Fatalf("Dialogs service failed: %v", err)
	}
}
