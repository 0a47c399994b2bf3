package mocks

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// ErrUnreadable is returned by MockBlob.Open when Unreadable is set
var ErrUnreadable = errors.New("blob unreadable")

// MockBlob is an in-memory Blob
type MockBlob struct {
	FileName   string
	Mime       string
	Content    []byte
	Unreadable bool
	// Delay is slept inside Open to shuffle completion order
	Delay time.Duration
}

func NewMockBlob(name, mime string, content []byte) *MockBlob {
	return &MockBlob{FileName: name, Mime: mime, Content: content}
}

func (b *MockBlob) Name() string     { return b.FileName }
func (b *MockBlob) MimeType() string { return b.Mime }
func (b *MockBlob) Size() int64      { return int64(len(b.Content)) }

func (b *MockBlob) Open() (io.ReadCloser, error) {
	if b.Delay > 0 {
		time.Sleep(b.Delay)
	}
	if b.Unreadable {
		return nil, ErrUnreadable
	}
	return io.NopCloser(bytes.NewReader(b.Content)), nil
}
