// main.go
//
// Entry point; command handling lives in cmd/root.go.

package main

import (
	"github.com/pthm-cable/flock/cmd"
)

func main() {
	cmd.Execute()
}
