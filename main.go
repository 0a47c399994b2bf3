package main

import "github.com/kamal-hamza/dx-cli/cmd"

func main() {
	cmd.Execute()
}
