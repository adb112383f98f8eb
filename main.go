package main

import "graphipedia/dataimport/cmd"

func main() {
	cmd.Execute()
}
