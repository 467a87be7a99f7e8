package main

import (
	"github.com/CodeMonkeyCybersecurity/greenboot/cmd"
)

func main() {
	cmd.Execute()
}
