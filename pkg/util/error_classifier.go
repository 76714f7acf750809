package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/textproto"
	"net/url"
	"strings"
)

// ClassifyError maps an error to a short type label used in logs and metric
// labels. It never returns an empty string for a non-nil error.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	// JSON decode errors（数据格式错误）
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "json_decode_error"
	}

	// Context 在网络错误之前判断，url.Error 也会包装它
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}

	// SMTP 服务端响应
	var smtpErr *textproto.Error
	if errors.As(err, &smtpErr) {
		switch {
		case smtpErr.Code == 535 || smtpErr.Code == 534 || smtpErr.Code == 530:
			return "smtp_auth_failed"
		case smtpErr.Code >= 500:
			return "smtp_rejected"
		case smtpErr.Code >= 400:
			return "smtp_temporary"
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	// gomail 在拨号前校验消息头
	if strings.HasPrefix(err.Error(), "gomail:") {
		return "invalid_message"
	}

	return "unknown_error"
}
