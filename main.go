package main

import "campuscycle/cmd"

func main() {
	cmd.Execute()
}
