package command

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ResolveChannel(ctx context.Context, channelID string) (Channel, error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(Channel), args.Error(1)
}

func (m *mockGateway) Send(ctx context.Context, channelID string, resp Response) error {
	args := m.Called(ctx, channelID, resp)
	return args.Error(0)
}

func (m *mockGateway) Latency() time.Duration {
	return 42 * time.Millisecond
}

func (m *mockGateway) Version() string {
	return "discordgo test"
}
