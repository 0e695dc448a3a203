package main

import (
	malamute "github.com/malamute-radio/malamute/src"
)

func main() {
	malamute.GenPacketsMain()
}
