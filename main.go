package main

import "github.com/quocvuong92/fastgpt-cli/cmd"

func main() {
	cmd.Execute()
}
