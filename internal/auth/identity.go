package auth

import (
	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/database/models"
)

// Identity is the authenticated principal of a request. OrganizationID is
// read from the stored user row on every request, never from client input.
type Identity struct {
	UserID           uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationName string
	Email            string
	FirstName        string
	LastName         string
	SessionID        string
}

func (i *Identity) FullName() string {
	return i.FirstName + " " + i.LastName
}

func identityFromUser(u *models.User, sessionID string) *Identity {
	id := &Identity{
		UserID:         u.ID,
		OrganizationID: u.OrganizationID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		SessionID:      sessionID,
	}
	if u.Organization != nil {
		id.OrganizationName = u.Organization.Name
	}
	return id
}
