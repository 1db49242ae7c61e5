package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kilianp07/batteryform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
