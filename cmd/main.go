package main

import (
	"os"

	"github.com/soundprediction/cogito/cmd/cogito"
)

func main() {
	if err := cogito.Execute(); err != nil {
		os.Exit(1)
	}
}
