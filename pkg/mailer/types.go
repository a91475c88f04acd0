package mailer

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// Tags are provider tags attached to an email. A struct{} value marks a
// presence-only tag; other values are stringified by the provider adapter.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and address as "Name <email>".
// The bare address is returned when name is empty.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a message ready for a Sender.
type Email struct {
	Headers     map[string]string
	Tags        Tags
	Subject     string
	HTML        string
	Text        string
	From        string // overrides the sender's default address
	ReplyTo     string
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Attachment is a file carried by an email.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string // set for inline attachments
	Content     []byte
}

// AttachFile reads the file at path into an Attachment named after its base
// name. The content type is derived from the extension.
func AttachFile(path string) (Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %s: %v", ErrAttachment, path, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	}, nil
}
