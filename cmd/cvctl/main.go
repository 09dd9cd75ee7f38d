// Command cvctl administers the portfolio API: it applies migrations,
// mints admin tokens and queries a running server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
