// Command taskctl is the operator CLI for the task router. It reads the same
// configuration as the server and talks to the task store directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openTaskService).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
