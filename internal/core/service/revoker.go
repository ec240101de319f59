package service

import (
	"context"
	"time"
)

// NoopRevoker keeps refresh-token rotation stateless: nothing is ever revoked.
type NoopRevoker struct{}

func (NoopRevoker) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
