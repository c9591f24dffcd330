package main

import "github.com/notsao/tadibsync/cmd/tadib/root"

func main() {
	root.Execute()
}
