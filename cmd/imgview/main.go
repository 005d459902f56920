package main

import (
	"fmt"
	"os"

	"imgview/internal/log"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	err := NewRootCmd().Execute()
	_ = log.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
