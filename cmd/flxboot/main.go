// Command flxboot stages, inspects and simulates external-flash
// application updates, and probes real flash chips over SPI.
package main

import (
	"flag"
)

func main() {
	// glog writes to files by default
	_ = flag.Set("logtostderr", "true")
	Execute()
}
