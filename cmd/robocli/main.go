package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"os"

	"github.com/robotalks/swerve.go/pkg/cli/sh"
	env "github.com/robotalks/swerve.go/pkg/l1/env/connector"

	_ "github.com/robotalks/swerve.go/pkg/cli/cmds/all"
)

func init() {
	env.SetupFlags()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [COMMAND ARGS...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "The registry is mqtt://host:port/prefix/, or a robot listening at")
		fmt.Fprintln(flag.CommandLine.Output(), "tcp://host:port or ws://host:port/path which is connected directly.")
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
}

func main() {
	sh.Main()
}
