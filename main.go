package main

import "github.com/vietddude/keapsync/internal/cli"

func main() {
	cli.Execute()
}
