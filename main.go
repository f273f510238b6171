package main

import "github.com/sigmora-labs/ms-go-orders/cmd"

func main() {
	cmd.Execute()
}
