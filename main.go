package main

import "github.com/shouni/go-article-metrics/cmd"

func main() {
	cmd.Execute()
}
