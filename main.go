// Main entry point for the application
package main

import (
	"github.com/uhwo/visuAlysium/internal/cli"
)

func main() {
	cli.Execute()
}
