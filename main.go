package main

import "s3scanner/cmd"

func main() {
	cmd.Execute()
}
