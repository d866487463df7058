package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Root is the command loop.
func (a *App) Root(ctx context.Context) {

	if a.prompt {
		fmt.Fprintln(a.out, "faceauth CLI (type 'help' for commands)")
	}

	for {
		if a.prompt {
			fmt.Fprintf(a.out, "faceauth %s> ", a.getStatus())
		}
		if !a.in.Scan() {
			break
		}
		parts := strings.Fields(a.in.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: whoami, logout, ping, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register <username> <descriptor.json>, login <descriptor.json>, ping, exit")
			}
		case "ping":
			a.ping(ctx)
		case "register":
			if len(args) != 2 {
				fmt.Fprintln(a.out, "Usage: register <username> <descriptor.json>")
				continue
			}
			a.register(ctx, args[0], args[1])
		case "login":
			if len(args) != 1 {
				fmt.Fprintln(a.out, "Usage: login <descriptor.json>")
				continue
			}
			a.login(ctx, args[0])
		case "whoami":
			a.whoAmI(ctx)
		case "logout":
			a.logout()
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}

}
