package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
)

func TestProfileJSONOmitsPasswordHash(t *testing.T) {
	profile := Profile{
		ID:           uuid.New(),
		Email:        "rx@example.com",
		Name:         "Main St Pharmacy",
		Role:         enums.RolePharmacy,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$secret",
	}

	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "argon2id")
	require.NotContains(t, string(raw), "PasswordHash")
	require.Contains(t, string(raw), "rx@example.com")
}
