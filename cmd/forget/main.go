package main

import (
	"fmt"
	"os"

	"github.com/eigenmagic/forget/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
