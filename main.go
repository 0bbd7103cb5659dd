package main

import (
	"github.com/samuelfneumann/rlroute/cli"
)

func main() {
	cli.Execute()
}
