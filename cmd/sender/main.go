package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/ledzpl/relay/internal/chat"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s [server_address] [port] [username]\n", os.Args[0])
		os.Exit(1)
	}
	host, port, username := os.Args[1], os.Args[2], os.Args[3]

	client, err := chat.DialSender(net.JoinHostPort(host, port), username)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\nEOF detected, exiting.")
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			command, arg, _ := strings.Cut(line[1:], " ")
			switch command {
			case "join":
				if err := client.Join(arg); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			case "leave":
				if err := client.Leave(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			case "quit":
				if err := client.Quit(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				return
			default:
				fmt.Fprintf(os.Stderr, "'%s' is not a valid command\n", command)
			}
			continue
		}

		if err := client.SendAll(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
