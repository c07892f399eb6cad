package entities

import (
	"github.com/message-mint/whatsapp-api/internal/domain/account"
)

// Account is the sp_accounts row shared with the wider platform: one social
// profile per connected session, keyed by the session token.
type Account struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	IDs           string `gorm:"column:ids;type:varchar(20);uniqueIndex;not null"`
	Module        string `gorm:"type:varchar(30);not null;default:'social'"`
	SocialNetwork string `gorm:"type:varchar(30);index;not null"`
	Category      string `gorm:"type:varchar(30)"`
	LoginType     int    `gorm:"not null;default:1"`
	CanPost       int    `gorm:"not null;default:1"`
	TeamID        int64  `gorm:"index"`
	PID           string `gorm:"column:pid;type:varchar(100)"`
	Name          string `gorm:"type:varchar(191)"`
	Username      string `gorm:"type:varchar(191)"`
	Token         string `gorm:"type:varchar(191);index;not null"`
	Avatar        string `gorm:"type:text"`
	URL           string `gorm:"type:text"`
	Tmp           string `gorm:"type:text"`
	Status        int    `gorm:"index;not null;default:0"`
	Changed       int64  `gorm:"not null;default:0"`
	Created       int64  `gorm:"not null;default:0"`
}

// TableName keeps the legacy table name.
func (Account) TableName() string {
	return "sp_accounts"
}

// EtoD converts the database entity to the domain model.
func (a *Account) EtoD() *account.Account {
	return &account.Account{
		ID:            a.ID,
		IDs:           a.IDs,
		Module:        a.Module,
		SocialNetwork: a.SocialNetwork,
		Category:      a.Category,
		LoginType:     a.LoginType,
		CanPost:       a.CanPost,
		TeamID:        a.TeamID,
		PID:           a.PID,
		Name:          a.Name,
		Username:      a.Username,
		Token:         a.Token,
		Avatar:        a.Avatar,
		URL:           a.URL,
		Tmp:           a.Tmp,
		Status:        a.Status,
		Changed:       a.Changed,
		Created:       a.Created,
	}
}

// NewSchemaAccount creates a database entity from the domain model.
func NewSchemaAccount(a *account.Account) *Account {
	return &Account{
		ID:            a.ID,
		IDs:           a.IDs,
		Module:        a.Module,
		SocialNetwork: a.SocialNetwork,
		Category:      a.Category,
		LoginType:     a.LoginType,
		CanPost:       a.CanPost,
		TeamID:        a.TeamID,
		PID:           a.PID,
		Name:          a.Name,
		Username:      a.Username,
		Token:         a.Token,
		Avatar:        a.Avatar,
		URL:           a.URL,
		Tmp:           a.Tmp,
		Status:        a.Status,
		Changed:       a.Changed,
		Created:       a.Created,
	}
}
