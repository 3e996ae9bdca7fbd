package main

import "tari-sdk/cmd/tari-cli/cmd"

func main() {
	cmd.Execute()
}
