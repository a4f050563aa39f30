package model

// ChatMessage is the structured payload delivered by the messaging platform.
// Shape mirrors the Bot API message object, reduced to the fields the
// extractor consumes.
type ChatMessage struct {
	MessageID int64         `json:"message_id"`
	Date      int64         `json:"date"`
	Chat      *ChatRef      `json:"chat,omitempty"`
	Text      string        `json:"text,omitempty"`
	Caption   string        `json:"caption,omitempty"`
	Document  *ChatDocument `json:"document,omitempty"`
	Photo     []ChatPhoto   `json:"photo,omitempty"`
}

// ChatRef identifies the originating chat.
type ChatRef struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// ChatDocument is a file attachment reference. The bytes are fetched via the
// platform API in two steps (file resolution, then download).
type ChatDocument struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// ChatPhoto is one size variant of a photo attachment.
type ChatPhoto struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
