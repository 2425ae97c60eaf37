package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"chat-relay/domain"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddr string `env:"CHAT_SERVER_ADDR,default=localhost:9000"`
	Username   string `env:"CHAT_USERNAME,required=true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: name handshake first, then one
// goroutine rendering server lines while the main loop forwards stdin.
// "/quit" is a client-local convention, never sent on the wire.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := net.Dial("tcp", config.ServerAddr)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to relay at %s: %w", config.ServerAddr, err)
	}
	defer conn.Close()

	// Handshake: the first write is the display name, capped at
	// NameLen-1 bytes, no terminator.
	name := config.Username
	if len(name) > domain.NameLen-1 {
		name = name[:domain.NameLen-1]
	}
	if _, err := conn.Write([]byte(name)); err != nil {
		return exitRuntime, fmt.Errorf("handshake failed: %w", err)
	}

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		receive(conn)
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "/quit" {
				stop()
				return
			}
			if line == "" {
				continue
			}
			if _, err := conn.Write([]byte(line)); err != nil {
				return
			}
		}
	}()

	color.Green.Printf("Connected to %s as %s\n", config.ServerAddr, name)

	select {
	case <-ctx.Done():
	case <-disconnected:
		color.Red.Println("*** disconnected from relay")
	}
	return exitOK, nil
}

// receive renders every server message until the connection drops. Roster
// control messages become a user table; everything else is a chat line.
func receive(conn net.Conn) {
	buf := make([]byte, domain.MaxMessageSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			render(buf[:n])
		}
		if err != nil || n == 0 {
			return
		}
	}
}

func render(payload []byte) {
	if names, ok := domain.DecodeRoster(payload); ok {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Users"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, name := range names {
			table.Append([]string{name})
		}
		table.Render()
		return
	}

	line := string(payload)
	switch {
	case strings.HasPrefix(line, "(private) "):
		color.Magenta.Print(line)
	case strings.HasPrefix(line, domain.ServerName+": ***"):
		color.Yellow.Print(line)
	default:
		fmt.Print(line)
	}
}
