package main

import (
	"capescraper/cmd/capescraper/commands"
	"capescraper/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
