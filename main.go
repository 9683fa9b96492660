package main

import "ledgersync/cmd/cli"

func main() {
	cmd.Execute()
}
