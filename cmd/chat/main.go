package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Triage server URL")
	sessionKey := flag.String("session", "cli-user", "Session key for the conversation")
	flag.Parse()

	fmt.Println("Triage CLI Chat")
	fmt.Printf("Server: %s | Session: %s\n", *server, *sessionKey)
	fmt.Println("Type 'exit' or 'quit' to leave. Use /history to see the transcript.")
	fmt.Println("---")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Take care!")
			return
		}
		if input == "/history" {
			fetchHistory(*server, *sessionKey)
			continue
		}

		sendMessage(*server, *sessionKey, input)
	}
}

func sendMessage(server, sessionKey, message string) {
	body, _ := json.Marshal(map[string]string{
		"session_key": sessionKey,
		"message":     message,
	})

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Post(server+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		printError("Failed to send message: %v", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		printError("Failed to parse reply: %v", err)
		return
	}
	if result.Error != "" {
		printError("Server error: %s", result.Error)
		return
	}
	fmt.Println("Bot:", result.Reply)
}

func fetchHistory(server, sessionKey string) {
	resp, err := http.Get(server + "/api/chat/history?session_key=" + sessionKey)
	if err != nil {
		printError("Failed to fetch history: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printError("History unavailable (status %d)", resp.StatusCode)
		return
	}

	var msgs []struct {
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		printError("Failed to parse history: %v", err)
		return
	}
	if len(msgs) == 0 {
		fmt.Println("No transcript yet.")
		return
	}
	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.Role, m.Content)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
