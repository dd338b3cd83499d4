package main

import "equipcare-hub.com/equipcare-hub/cmd"

func main() {
	cmd.Execute()
}
