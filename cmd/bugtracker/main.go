package main

// Set by release ldflags.
var version = "dev"

func main() {
	Execute(version)
}
