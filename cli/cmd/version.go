package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsklang/tsk/pkg"
)

// Version prints the program name and version.
type Version struct{}

// Run executes the version command.
func (Version) Run(context.Context) error {
	fmt.Printf("%s %s\n", pkg.Name, strings.TrimSpace(pkg.Version))

	return nil
}
