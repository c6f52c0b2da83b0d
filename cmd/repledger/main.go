// Command repledger tracks meal-driven exercise obligations and the weekly
// recovery debt left when they are missed.
package main

import "github.com/roach88/repledger/internal/cli"

func main() {
	cli.Main()
}
