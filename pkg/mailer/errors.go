package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("mailer: template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("mailer: layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("mailer: failed to render template")

	// ErrSendFailed indicates the provider rejected or failed to deliver the email.
	ErrSendFailed = errors.New("mailer: failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

	// ErrAttachment indicates an attachment file could not be read.
	ErrAttachment = errors.New("mailer: attachment unreadable")

	// ErrPingUnsupported indicates the sender cannot verify connectivity.
	ErrPingUnsupported = errors.New("mailer: sender does not support connectivity checks")

	// ErrPingFailed indicates the provider could not be reached or rejected the credentials.
	ErrPingFailed = errors.New("mailer: connectivity check failed")
)
