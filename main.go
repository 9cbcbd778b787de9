/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package main

import (
	"github.com/jonknoxdotcom/shaman-av/cmd"
)

func main() {
	cmd.Execute()
}
