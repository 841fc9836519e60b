// Package all registers all available shell commands.
package all

import (
	_ "github.com/robotalks/swerve.go/pkg/cli/cmds/swerve"
)
