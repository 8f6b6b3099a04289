package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/cordy-lang/cordy/internal/cli"
)

func main() {
	c := cli.Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
