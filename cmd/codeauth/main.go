package main

import (
	"log"

	"github.com/tech-arch1tect/codeauth"
)

func main() {
	app, err := codeauth.New(codeauth.WithHandlers())
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
