package main

import "github.com/varalys/plugconf/cmd/plugconf"

func main() { plugconf.Execute() }
