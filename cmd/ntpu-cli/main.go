package main

import "ntpuassist-backend/cmd/ntpu-cli/cmd"

func main() {
	cmd.Execute()
}
