// The main package for the pricewatch executable.
package main

import (
	"github.com/dkoval/pricewatch/cmd"
)

func main() {
	cmd.Execute()
}
