package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemvault/internal/domain"
)

func TestAuthorize(t *testing.T) {
	owner := domain.Principal{UserID: "u1", Username: "owner"}
	stranger := domain.Principal{UserID: "u2", Username: "stranger"}
	admin := domain.Principal{UserID: "u3", Username: "root", IsAdmin: true}

	tests := []struct {
		name      string
		principal domain.Principal
		action    Action
		ownerID   string
		allowed   bool
	}{
		{"read is open to anyone", stranger, ActionRead, "u1", true},
		{"create is open to anyone", stranger, ActionCreate, "", true},
		{"owner may update", owner, ActionUpdate, "u1", true},
		{"owner may delete", owner, ActionDelete, "u1", true},
		{"stranger may not update", stranger, ActionUpdate, "u1", false},
		{"stranger may not delete", stranger, ActionDelete, "u1", false},
		{"admin may update anything", admin, ActionUpdate, "u1", true},
		{"admin may delete anything", admin, ActionDelete, "u1", true},
		{"unknown action fails closed", admin, Action("transfer"), "u1", false},
		{"empty action fails closed", owner, Action(""), "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.action, tt.ownerID)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			var denied *domain.AccessDeniedError
			require.ErrorAs(t, err, &denied)
		})
	}
}
