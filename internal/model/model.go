package model

import (
	"encoding/json"
	"time"
)

// MediaKind is the coarse type of a generated artifact.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindImage, MediaKindVideo, MediaKindAudio:
		return true
	}
	return false
}

// DefaultContentType returns the content type assumed for a kind when the
// remote response does not carry one.
func (k MediaKind) DefaultContentType() string {
	switch k {
	case MediaKindVideo:
		return "video/mp4"
	case MediaKindAudio:
		return "audio/mpeg"
	default:
		return "image/png"
	}
}

// ProjectStatus is the run state machine: submitted → streaming → ready|error.
type ProjectStatus string

const (
	ProjectStatusSubmitted ProjectStatus = "submitted"
	ProjectStatusStreaming ProjectStatus = "streaming"
	ProjectStatusReady     ProjectStatus = "ready"
	ProjectStatusError     ProjectStatus = "error"
)

const DefaultProjectTitle = "Untitled Project"

type Project struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	StreamID      *string       `json:"stream_id,omitempty"`
	Status        ProjectStatus `json:"status"`
	Title         string        `json:"title"`
	LastMessageAt time.Time     `json:"last_message_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	}
	return false
}

// MessagePart is one ordered content segment of a message. Type selects
// which of the remaining fields are meaningful.
type MessagePart struct {
	Type string `json:"type"`

	// type == "text"
	Text string `json:"text,omitempty"`

	// type == "file"
	URL       string `json:"url,omitempty"`
	MediaType string `json:"mediaType,omitempty"`

	// type == "tool-call" / "tool-result"
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
}

const (
	PartTypeText       = "text"
	PartTypeFile       = "file"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
)

type Message struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Role      MessageRole     `json:"role"`
	Parts     []MessagePart   `json:"parts"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HasUserContent reports whether the message carries at least one non-blank
// text part or one file part. Runs are rejected without such a message.
func (m Message) HasUserContent() bool {
	for _, part := range m.Parts {
		switch part.Type {
		case PartTypeText:
			if textNotBlank(part.Text) {
				return true
			}
		case PartTypeFile:
			return true
		}
	}
	return false
}

func textNotBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// MediaFile is one uploaded output file, owned by its project and user.
type MediaFile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id"`
	Kind        MediaKind `json:"kind"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
