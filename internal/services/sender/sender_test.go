package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fintrack/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSenderService_SendWelcome(t *testing.T) {
	validBody := []byte(`{"id":"u-1","email":"a@x.com","name":"Alice","registered_at":"2026-01-01T00:00:00Z"}`)

	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorIs       error
		errorMessage  string
	}{
		{
			name: "success - send welcome email",
			body: validBody,
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				t.On("From").Return("noreply@example.com")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "a@x.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.MatchedBy(func(p []byte) bool {
					return strings.Contains(string(p), "To: a@x.com") &&
						strings.Contains(string(p), "Alice")
				})).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorIs:       ErrInvalidEvent,
		},
		{
			name:          "event without email",
			body:          []byte(`{"id":"u-1"}`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorIs:       ErrInvalidEvent,
		},
		{
			name: "SMTP connection error",
			body: validBody,
			setupMocks: func(t *MockTransport) {
				t.On("From").Return("noreply@example.com")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name: "recipient rejected",
			body: validBody,
			setupMocks: func(t *MockTransport) {
				mockClient := new(MockSMTPClient)
				t.On("From").Return("noreply@example.com")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "a@x.com").Return(errors.New("550 mailbox unavailable")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "550 mailbox unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)

			tt.setupMocks(transport)

			err := service.SendWelcome(context.Background(), tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
				if tt.errorMessage != "" {
					assert.Contains(t, err.Error(), tt.errorMessage)
				}
			} else {
				assert.NoError(t, err)
			}

			transport.AssertExpectations(t)
		})
	}
}
