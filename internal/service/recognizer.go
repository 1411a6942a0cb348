package service

import "context"

// Recognizer turns a photographed receipt into raw text. Image recognition
// itself lives outside this repository; the server runs without one and
// accepts raw text only.
type Recognizer interface {
	Recognize(ctx context.Context, imageRef string) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, imageRef string) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, imageRef string) (string, error) {
	return f(ctx, imageRef)
}
