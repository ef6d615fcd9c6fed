package main

import "github.com/fekuna/omnipos-backoffice-service/internal/cmd"

func main() {
	cmd.Execute()
}
