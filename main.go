package main

import "github.com/nijaru/yt-transcript/cli"

func main() {
	cli.Main()
}
