package main

import "github.com/darmiel/attrgate/cmd"

func main() {
	cmd.Execute()
}
