// # cmd/javaindex/main.go
package main

import (
	"os"
)

const VERSION = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
