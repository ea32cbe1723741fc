package handler

import (
	"mime/multipart"

	"github.com/keris/scholar-backend/internal/model"
)

// formImage is an opened "image" part of a multipart request.
type formImage struct {
	file   multipart.File
	header *multipart.FileHeader
}

func openFormImage(header *multipart.FileHeader) (*formImage, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &formImage{file: f, header: header}, nil
}

// upload returns nil for a nil receiver so callers can pass it straight on.
func (i *formImage) upload() *model.ImageUpload {
	if i == nil {
		return nil
	}
	return &model.ImageUpload{
		Filename:    i.header.Filename,
		ContentType: i.header.Header.Get("Content-Type"),
		Size:        i.header.Size,
		Body:        i.file,
	}
}

func (i *formImage) close() {
	_ = i.file.Close()
}
