// Command bufstress runs concurrent producer/consumer workloads through a
// bounded message buffer and reports what went through it.
package main

import (
	"os"

	"github.com/NetPo4ki/go-buffer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
