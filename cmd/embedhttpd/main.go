// Command embedhttpd serves the endpoints described by a configuration file
// over the embedded HTTP/1.1 endpoint server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
