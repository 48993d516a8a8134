package main

import "github.com/nandasafiq/hospital-management/cmd"

func main() {
	cmd.Execute()
}
