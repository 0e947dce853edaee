package main

import (
	"github.com/uhwo/visuAlysium/internal/cli"
)

func main() {
	cli.Execute()
}
