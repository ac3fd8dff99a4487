package main

import (
	"os"

	"github.com/meikuraledutech/cpm/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
