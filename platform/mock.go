package platform

import (
	"context"
	"sync"
)

// MockClient records calls for assertions in tests. Individual operations
// can be made to fail by setting the corresponding error field.
type MockClient struct {
	lk sync.Mutex

	SentMessages    []SentMessage
	DeletedMessages []int64
	BannedUsers     []int64
	Roles           map[int64]Role
	Media           map[string][]byte

	SendErr     error
	DeleteErr   error
	BanErr      error
	StatusErr   error
	DownloadErr error

	StatusCalls int
}

type SentMessage struct {
	GroupID int64
	Text    string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Roles: make(map[int64]Role),
		Media: make(map[string][]byte),
	}
}

func (c *MockClient) SendMessage(ctx context.Context, groupID int64, text string) error {
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.SentMessages = append(c.SentMessages, SentMessage{GroupID: groupID, Text: text})
	return nil
}

func (c *MockClient) DeleteMessage(ctx context.Context, groupID, messageID int64) error {
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	c.DeletedMessages = append(c.DeletedMessages, messageID)
	return nil
}

func (c *MockClient) BanMember(ctx context.Context, groupID, userID int64) error {
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.BanErr != nil {
		return c.BanErr
	}
	c.BannedUsers = append(c.BannedUsers, userID)
	return nil
}

func (c *MockClient) GetMemberStatus(ctx context.Context, groupID, userID int64) (Role, error) {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.StatusCalls++
	if c.StatusErr != nil {
		return "", c.StatusErr
	}
	role, ok := c.Roles[userID]
	if !ok {
		return RoleMember, nil
	}
	return role, nil
}

func (c *MockClient) DownloadMedia(ctx context.Context, fileRef string) ([]byte, error) {
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.DownloadErr != nil {
		return nil, c.DownloadErr
	}
	return c.Media[fileRef], nil
}

// Sent returns a copy of the sent messages, for assertions.
func (c *MockClient) Sent() []SentMessage {
	c.lk.Lock()
	defer c.lk.Unlock()
	out := make([]SentMessage, len(c.SentMessages))
	copy(out, c.SentMessages)
	return out
}
