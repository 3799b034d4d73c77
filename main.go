package main

import "github.com/ValentinKolb/japi/cmd"

func main() {
	cmd.Execute()
}
