package domain

import (
	"context"
	"errors"
)

type SubscribeRequest struct {
	Email  string
	Source string
}

type Service interface {
	// Subscribe records the email locally and forwards it to the delivery
	// provider. Subscribing twice is a no-op.
	Subscribe(ctx context.Context, req SubscribeRequest) error
}

var ErrInvalidEmail = errors.New("invalid_email")
