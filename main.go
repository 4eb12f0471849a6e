package main

import "github.com/SwayEquilibrium/pos-payments/cmd"

func main() {
	cmd.Execute()
}
