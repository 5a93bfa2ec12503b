package main

import "os"

// osExit is a variable to allow mocking os.Exit in tests
var osExit = os.Exit

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		osExit(1)
	}
}
