package main

import "github.com/minhvu/lottosync/internal/cli"

func main() {
	cli.Execute()
}
