package shophub

import "time"

// TailHistory returns the most recent n messages of the conversation.
// The stored history itself is never truncated; this is for display only.
func TailHistory(history []Message, n int) []Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// AddMessageToHistory appends a message to the conversation history,
// stamping it with the current time, and returns the updated history.
func AddMessageToHistory(history []Message, role, content, intent string, action Action) []Message {
	message := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Intent:    intent,
		Action:    action,
	}
	return append(history, message)
}
