package service

import (
	"errors"

	"event-social/internal/social"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEventNotFound      = social.ErrEventNotFound
	ErrNotMember          = errors.New("only attendees can use the event chat")
	ErrNotFriends         = errors.New("you can only message friends")
)
