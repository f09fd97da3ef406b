package repository

import "context"

// MediaStore uploads a binary attachment and returns a public URL. Upload
// failure never blocks an exchange; the image is dropped from the persisted
// record instead.
type MediaStore interface {
	Save(ctx context.Context, ownerID, filename string, data []byte) (publicURL string, err error)
}
