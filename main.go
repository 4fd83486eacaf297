package main

import "github.com/Webelocity/serverless-flightcraft-hpd-integration/cmd"

func main() {
	cmd.Execute()
}
