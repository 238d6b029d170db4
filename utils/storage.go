package utils

import (
	"context"
	"io"
)

type Upload struct {
	Name        string
	ContentType string
	Folder      string
	Body        io.Reader
}

// StoredFile is what the store hands back: Ref identifies the blob for later
// deletion, URL is where it can be retrieved.
type StoredFile struct {
	Ref string
	URL string
}

type FileStore interface {
	Save(ctx context.Context, u Upload) (StoredFile, error)
	Delete(ctx context.Context, ref string) error
}
