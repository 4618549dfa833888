package main

import (
	"fmt"
	"net"
	"os"

	"github.com/ledzpl/relay/internal/chat"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "Usage: %s [server_address] [port] [username] [room]\n", os.Args[0])
		os.Exit(1)
	}
	host, port, username, room := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	client, err := chat.DialReceiver(net.JoinHostPort(host, port), username, room)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	for {
		delivery, err := client.Next()
		if err != nil {
			// connection was closed
			return
		}
		fmt.Printf("%s: %s\n", delivery.Sender, delivery.Text)
	}
}
