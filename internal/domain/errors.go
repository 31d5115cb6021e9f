package domain

import "errors"

var (
	ErrNoImage       = errors.New("no image file provided")
	ErrEmptyImage    = errors.New("empty image upload")
	ErrPolicyDenied  = errors.New("encode denied by policy")
	ErrCodecFailed   = errors.New("watermark codec failed")
	ErrSigningFailed = errors.New("signing failed")
	ErrNotFound      = errors.New("not found")
)
