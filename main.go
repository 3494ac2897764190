package main

import "github.com/example/makeup-recommender/cmd"

func main() {
	cmd.Execute()
}
