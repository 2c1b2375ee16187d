package common

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsRetryable 判断是否可重试的存储错误
func IsRetryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return true
	}
	return false
}

// WithRetry 通用重试机制
func WithRetry(operation func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return err
}
