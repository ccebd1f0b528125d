package main

import (
	_ "golang.org/x/crypto/x509roots/fallback" // We need this to make TLS work in scratch containers

	"feedkiosk/cmd"
)

func main() {
	cmd.Execute()
}
