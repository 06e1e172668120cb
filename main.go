package main

import "github.com/naka-gawa/gh-review-activity/cmd"

func main() {
	cmd.Execute()
}
