package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSend(t *testing.T) {
	dialer := new(MockDialer)
	parser := new(MockTemplate)

	m := &Mail{
		dialer: dialer,
		parser: parser,
		sender: "no-reply@example.org",
	}

	parser.On("ParseTemplate", "comment_notification.html", mock.Anything).Return(
		bytes.NewBufferString("subject"),
		bytes.NewBufferString("plain"),
		bytes.NewBufferString("html"),
		nil,
	)
	dialer.On("DialAndSend", mock.Anything).Return(nil)

	err := m.send("admin@example.org", nil, "comment_notification.html")
	assert.NoError(t, err)

	dialer.AssertExpectations(t)
	parser.AssertExpectations(t)
}

func TestSendDialerFailure(t *testing.T) {
	dialer := new(MockDialer)
	parser := new(MockTemplate)

	m := &Mail{
		dialer: dialer,
		parser: parser,
		sender: "no-reply@example.org",
	}

	parser.On("ParseTemplate", mock.Anything, mock.Anything).Return(
		bytes.NewBufferString("subject"),
		bytes.NewBufferString("plain"),
		bytes.NewBufferString("html"),
		nil,
	)
	dialer.On("DialAndSend", mock.Anything).Return(errors.New("smtp unreachable"))

	err := m.send("admin@example.org", nil, "comment_notification.html")
	assert.EqualError(t, err, "smtp unreachable")
}
