package main

import (
	"fmt"
	"os"

	"github.com/tillberg/autorestart"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/cli"
)

func main() {
	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
