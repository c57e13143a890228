package main

import "github.com/foamlab/casekit/cmd"

func main() {
	cmd.Execute()
}
