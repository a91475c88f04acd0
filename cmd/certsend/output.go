package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

func printSuccess(format string, a ...any) {
	successColor.Printf("✓ "+format+"\n", a...)
}

func printError(format string, a ...any) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func printWarn(format string, a ...any) {
	warnColor.Printf("⚠ "+format+"\n", a...)
}

func printInfo(format string, a ...any) {
	fmt.Printf(format+"\n", a...)
}
