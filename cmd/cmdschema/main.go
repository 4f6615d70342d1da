// Package main is the entry point for the cmdschema CLI tool.
package main

import (
	"github.com/anthropics/cmdschema/internal/cmd"
)

func main() {
	cmd.Execute()
}
