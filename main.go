package main

import "github.com/pgmt/pgmt/cmd"

func main() {
	cmd.Execute()
}
