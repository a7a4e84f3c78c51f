package main

import (
	"fmt"
	"os"

	"PushRelay/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to create application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}
