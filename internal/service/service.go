package service

import (
	"errors"

	"go.uber.org/zap"
)

var (
	ErrCompetitionNotFound  = errors.New("competition not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrRegistrationClosed   = errors.New("registration is closed")
	ErrAlreadyRegistered    = errors.New("athlete is already registered for this competition")
	ErrProgramNotOffered    = errors.New("program is not offered")
	ErrProgramFull          = errors.New("program is full")
	ErrAlreadyWithdrawn     = errors.New("registration is already withdrawn")
)

// Publisher emits record notifications. A nil Publisher disables them.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

func publish(p Publisher, logger *zap.Logger, key string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(key, payload); err != nil {
		logger.Warn("publish failed", zap.String("routing_key", key), zap.Error(err))
	}
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
