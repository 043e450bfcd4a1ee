// Package main is the entry point for the shcov CLI.
package main

import "shcov.dev/pkg/shcov/cmd"

func main() {
	cmd.Execute()
}
