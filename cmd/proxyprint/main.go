package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("Error: ")+err.Error())
		os.Exit(exitCode(err))
	}
}
