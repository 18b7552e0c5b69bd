// Package docstore loads and saves whole documents atomically. A save either leaves the
// previous document in place or replaces it with a fully validated new one.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when no document has been saved yet.
	ErrNotFound = errors.New("document not found")
	// ErrValidation is returned by Save when the staged document does not re-parse or
	// fails the store's validator. The canonical document is untouched.
	ErrValidation = errors.New("document failed validation")
)

// Store is the contract shared by every backend.
type Store[T any] interface {
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, doc T) error
}

// Validator checks a freshly re-parsed document before it is committed.
type Validator[T any] func(doc T) error

// Option configures a store.
type Option[T any] func(*options[T])

type options[T any] struct {
	codec     Codec
	validator Validator[T]
}

// WithCodec overrides the codec picked from the file extension.
func WithCodec[T any](c Codec) Option[T] {
	return func(o *options[T]) { o.codec = c }
}

// WithValidator runs v on the re-parsed document before commit.
func WithValidator[T any](v Validator[T]) Option[T] {
	return func(o *options[T]) { o.validator = v }
}

// roundTrip encodes doc, decodes the bytes again and validates the decoded copy.
// It returns the exact bytes that were verified.
func roundTrip[T any](codec Codec, doc T, validate Validator[T]) ([]byte, error) {
	data, err := codec.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := verify(codec, data, validate); err != nil {
		return nil, err
	}
	return data, nil
}

func verify[T any](codec Codec, data []byte, validate Validator[T]) error {
	var parsed T
	if err := codec.Unmarshal(data, &parsed); err != nil {
		return errors.Join(ErrValidation, err)
	}
	if validate != nil {
		if err := validate(parsed); err != nil {
			return errors.Join(ErrValidation, err)
		}
	}
	return nil
}
