package main

import (
	"flag"
	"fmt"
)

var version = "dev"

func versionString() string {
	return fmt.Sprintf("%s %s", productName, version)
}

func (c *cli) runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(c.stderr, "version takes no arguments")
		return 2
	}
	fmt.Fprintln(c.stdout, versionString())
	return 0
}
