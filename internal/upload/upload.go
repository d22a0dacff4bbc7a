// Package upload validates attachments before they are offered to the
// backend. Validation is purely local: a file that fails here never
// causes a network call.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

const (
	// MaxImageSize is the cap for image attachments, 5MB in bytes.
	MaxImageSize = 5 * 1024 * 1024
	// MaxDocumentSize is the cap for document attachments, 10MB in bytes.
	MaxDocumentSize = 10 * 1024 * 1024
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var documentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".txt":  true,
	".csv":  true,
	".zip":  true,
}

// Error is a rejected attachment.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Classify maps a filename to an attachment kind by extension. The second
// return is false for extensions that are neither image nor document.
func Classify(name string) (domain.AttachmentKind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExts[ext]:
		return domain.AttachmentImage, true
	case documentExts[ext]:
		return domain.AttachmentDocument, true
	default:
		return "", false
	}
}

// Validate checks a candidate attachment against the format whitelist and
// the per-kind size caps. Sizes exactly at the cap pass.
func Validate(name string, size int64) (domain.AttachmentKind, error) {
	kind, ok := Classify(name)
	if !ok {
		return "", &Error{
			Code:    "UNSUPPORTED_FILE_TYPE",
			Message: fmt.Sprintf("file type %q is not supported", strings.ToLower(filepath.Ext(name))),
		}
	}

	limit := int64(MaxDocumentSize)
	if kind == domain.AttachmentImage {
		limit = MaxImageSize
	}
	if size > limit {
		return "", &Error{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("%s exceeds the %dMB limit for %s attachments", name, limit/(1024*1024), kind),
		}
	}

	return kind, nil
}

// Inspect stats a local file and returns it as a validated attachment.
// The URL field is left empty; the backend assigns one on upload.
func Inspect(path string) (domain.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}
	if info.IsDir() {
		return domain.Attachment{}, &Error{
			Code:    "NOT_A_FILE",
			Message: fmt.Sprintf("%s is a directory", path),
		}
	}

	name := filepath.Base(path)
	kind, err := Validate(name, info.Size())
	if err != nil {
		return domain.Attachment{}, err
	}

	return domain.Attachment{
		Name: name,
		Kind: kind,
		Size: info.Size(),
	}, nil
}
