package main

import "github.com/theirongolddev/edumetrics/cmd"

func main() {
	cmd.Execute()
}
