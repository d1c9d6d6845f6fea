// Command vendormail is a terminal viewer for stored vendor comparisons.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aoi-dev/vendormail/internal/tui"
)

var version = "dev"

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "vendormail server address")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("vendormail", version)
		return
	}

	app := tui.NewApp(*serverURL)
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
