package service

import "errors"

var (
	ErrFollowSelf       = errors.New("cannot follow self")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFound         = errors.New("not found")
	ErrBadCredentials   = errors.New("invalid username or password")
	ErrBadTarget        = errors.New("unknown target type")
	ErrFanoutFailed     = errors.New("fanout write failed")
)
