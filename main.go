// Command jobmon supervises a fixed set of long-running jobs, restarting
// them on unexpected exit with a rapid-crash cooldown, and exposes their
// lifecycle over a local control socket.
package main

import "github.com/adamnew123456/jobmon/cmd"

func main() {
	cmd.Execute()
}
