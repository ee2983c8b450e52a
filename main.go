package main

import (
	"github.com/ValentinKolb/vcell/cmd"
)

func main() {
	cmd.Execute()
}
