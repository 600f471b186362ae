package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var messageText string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message or start an interactive chat",
	Long:  "Creates a conversation on the server and sends one message or starts an interactive chat loop.",
	Run: func(cmd *cobra.Command, args []string) {
		message := resolveMessage(args)

		client := newClient(serverURL)

		conversationID, err := client.createConversation()
		if err != nil {
			fmt.Printf("failed to create conversation: %v\n", err)
			return
		}

		if message != "" {
			runSingleMessage(client, conversationID, message)
			return
		}

		runInteractive(client, conversationID)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&messageText, "message", "m", "", "message text to send")
}

func resolveMessage(args []string) string {
	if value := strings.TrimSpace(messageText); value != "" {
		return value
	}

	if len(args) == 0 {
		return ""
	}

	return strings.TrimSpace(strings.Join(args, " "))
}

func runSingleMessage(client *assistantClient, conversationID, message string) {
	fmt.Println(renderUser(message))

	reply, err := client.postMessage(conversationID, message)
	if err != nil {
		fmt.Println(renderError(err.Error()))
		return
	}

	fmt.Println(renderBot(reply))
}

func runInteractive(client *assistantClient, conversationID string) {
	fmt.Println(renderHeader(conversationID))
	fmt.Println(renderHint("Type a question about Sudev's portfolio. 'exit' to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(renderPrompt())
		if !scanner.Scan() {
			return
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return
		}

		reply, err := client.postMessage(conversationID, message)
		if err != nil {
			fmt.Println(renderError(err.Error()))
			continue
		}

		fmt.Println(renderBot(reply))
	}
}

// assistantClient is a minimal HTTP client for the server's v1 API.
type assistantClient struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *assistantClient {
	return &assistantClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

type conversationPayload struct {
	ID string `json:"id"`
}

type messagePayload struct {
	Reply struct {
		Text string `json:"text"`
	} `json:"reply"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *assistantClient) createConversation() (string, error) {
	resp, err := c.http.Post(c.baseURL+"/api/v1/conversations", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var payload conversationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	return payload.ID, nil
}

func (c *assistantClient) postMessage(conversationID, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/v1/conversations/%s/messages", c.baseURL, conversationID)
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var errPayload errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errPayload); decodeErr == nil && errPayload.Message != "" {
			return "", fmt.Errorf("%s", errPayload.Message)
		}
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var payload messagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	return payload.Reply.Text, nil
}
