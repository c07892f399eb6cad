package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/message-mint/whatsapp-api/internal/domain/account"
	"github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/transport"
	"github.com/message-mint/whatsapp-api/internal/utils/idgen"
	"github.com/message-mint/whatsapp-api/internal/utils/wajid"
)

const syncTimeout = 30 * time.Second

// syncConnected runs once per successful handshake: it persists the session
// row as active with a profile snapshot and upserts the linked account.
// Persistence failures are logged and never block the session from being
// open.
func (m *Manager) syncConnected(ctx context.Context, id string, client transport.Client) {
	ident, ok := client.Identity()
	if !ok {
		m.log.Warn().Str("session_id", id).Msg("open session has no identity, skipping sync")
		return
	}

	jid, err := wajid.Normalize(ident.JID)
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Str("jid", ident.JID).Msg("unparseable identity jid, skipping sync")
		return
	}
	phone, _ := wajid.Number(ident.JID)

	avatar := ""
	if url, err := client.ProfilePictureURL(ctx, jid); err != nil {
		m.log.Debug().Err(err).Str("session_id", id).Msg("avatar lookup failed")
	} else {
		avatar = url
	}

	profile, err := json.Marshal(instance.ProfileData{
		Phone:  phone,
		Name:   ident.Name,
		Avatar: avatar,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to encode profile snapshot")
		return
	}

	if err := m.instances.Update(ctx, id, map[string]any{
		"status": instance.StatusActive,
		"data":   string(profile),
	}); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to persist session status")
	}

	// The raw identity goes into the account row's tmp column untouched.
	snapshot, err := json.Marshal(ident)
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to encode identity snapshot")
		return
	}

	if err := m.upsertAccount(ctx, id, jid, ident.Name, avatar, string(snapshot)); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to upsert account")
	}
}

// upsertAccount creates the account row linked to the session token on first
// connect, and refreshes its profile fields on every reconnect. Sessions
// without a team get no account row.
func (m *Manager) upsertAccount(ctx context.Context, token, jid, name, avatar, snapshot string) error {
	inst, err := m.instances.FindByInstanceID(ctx, token)
	if err != nil {
		return err
	}
	if inst == nil || inst.TeamID == 0 {
		m.log.Debug().Str("session_id", token).Msg("session has no team, skipping account upsert")
		return nil
	}

	now := m.clock.Now().Unix()
	acct, err := m.accounts.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if acct != nil {
		if avatar == "" {
			avatar = acct.Avatar
		}
		return m.accounts.UpdateByID(ctx, acct.ID, map[string]any{
			"pid":      jid,
			"name":     name,
			"username": jid,
			"token":    token,
			"avatar":   avatar,
			"tmp":      snapshot,
			"status":   account.StatusActive,
			"changed":  now,
		})
	}

	ids, err := idgen.AccountID()
	if err != nil {
		return err
	}
	return m.accounts.Create(ctx, &account.Account{
		IDs:           ids,
		Module:        "whatsapp_profiles",
		SocialNetwork: "whatsapp",
		Category:      "profile",
		LoginType:     2,
		CanPost:       0,
		TeamID:        inst.TeamID,
		PID:           jid,
		Name:          name,
		Username:      jid,
		Token:         token,
		Avatar:        avatar,
		URL:           "https://web.whatsapp.com/",
		Tmp:           snapshot,
		Status:        account.StatusActive,
		Changed:       now,
		Created:       now,
	})
}
