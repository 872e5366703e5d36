// Package platform defines the messaging-platform boundary. The moderation
// core only ever talks to the platform through the Client interface; the
// surrounding bot shell provides the real implementation.
package platform

import "context"

// Role of a member within a group, as reported by the platform.
type Role string

const (
	RoleMember        Role = "member"
	RoleAdministrator Role = "administrator"
	RoleOwner         Role = "owner"
	RoleRestricted    Role = "restricted"
	RoleLeft          Role = "left"
)

// Privileged roles are exempt from all moderation actions.
func (r Role) Privileged() bool {
	return r == RoleAdministrator || r == RoleOwner
}

// Client is implemented by the messaging-platform integration. Every call
// may fail; failures are returned to the caller and are never fatal to the
// moderation core.
type Client interface {
	SendMessage(ctx context.Context, groupID int64, text string) error
	DeleteMessage(ctx context.Context, groupID, messageID int64) error
	BanMember(ctx context.Context, groupID, userID int64) error
	GetMemberStatus(ctx context.Context, groupID, userID int64) (Role, error)
	DownloadMedia(ctx context.Context, fileRef string) ([]byte, error)
}
