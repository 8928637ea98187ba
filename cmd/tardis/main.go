// Command tardis propagates satellite element sets with SGP4/SDP4.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
