package main

import (
	"log"

	"github.com/pagemark/pagemark/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ pagemark failed to start: %v", err)
	}
}
