package main

import (
	api "github.com/adriannogy/TFG"
)

func main() {
	api.Run()
}
