package main

import (
	"log"

	"github.com/rvenkatesh/interview-grader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
