// Command mediumcache runs synthetic workloads against the cache engines.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mediumcache/cmd/mediumcache/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
