package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"keystroke-lab/backend/internal/api"
	"keystroke-lab/backend/internal/tui"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "backend base URL")
	email := flag.String("email", "", "account email")
	username := flag.String("username", "", "username (with -signup)")
	password := flag.String("password", "", "account password")
	duration := flag.Int("duration", 15, "test duration in seconds (15 or 30)")
	signup := flag.Bool("signup", false, "register the account before logging in")
	history := flag.Bool("history", false, "print recent sessions and exit")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: client -email <email> -password <password> [-signup -username <name>] [-duration 15|30] [-history]")
		os.Exit(2)
	}
	if *duration != 15 && *duration != 30 {
		log.Fatalf("duration must be 15 or 30, got %d", *duration)
	}

	client := api.NewClient(*server)

	if *signup {
		if *username == "" {
			log.Fatal("-signup requires -username")
		}
		if _, err := client.Signup(*email, *username, *password); err != nil {
			log.Fatalf("Signup failed: %v", err)
		}
		fmt.Println("Registered", *username)
	}

	user, err := client.Login(*email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("Logged in as %s\n", user.Username)

	if *history {
		printHistory(client)
		return
	}

	p := tea.NewProgram(tui.NewModel(client, *duration), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Test runner failed: %v", err)
	}
}

func printHistory(client *api.Client) {
	sessions, err := client.ListSessions()
	if err != nil {
		log.Fatalf("Failed to fetch sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions yet")
		return
	}

	fmt.Printf("%-6s %-20s %6s %9s %7s\n", "ID", "Date", "WPM", "Accuracy", "Errors")
	for _, s := range sessions {
		fmt.Printf("%-6d %-20s %6.0f %8.0f%% %7d\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.WPM, s.Accuracy, s.TotalErrors)
	}
}
