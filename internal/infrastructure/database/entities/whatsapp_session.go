package entities

import (
	"github.com/message-mint/whatsapp-api/internal/domain/instance"
)

// WhatsAppSession is the sp_whatsapp_sessions row: one per provisioned
// instance, carrying a JSON profile snapshot once the session connects.
type WhatsAppSession struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	IDs        string `gorm:"column:ids;type:varchar(20);index"`
	TeamID     int64  `gorm:"index"`
	InstanceID string `gorm:"type:varchar(191);uniqueIndex;not null"`
	Data       string `gorm:"type:text"`
	Status     int    `gorm:"index;not null;default:0"`
}

// TableName keeps the legacy table name.
func (WhatsAppSession) TableName() string {
	return "sp_whatsapp_sessions"
}

// EtoD converts the database entity to the domain model.
func (w *WhatsAppSession) EtoD() *instance.Instance {
	return &instance.Instance{
		ID:         w.ID,
		IDs:        w.IDs,
		TeamID:     w.TeamID,
		InstanceID: w.InstanceID,
		Data:       w.Data,
		Status:     w.Status,
	}
}

// Team is the sp_team permission row referenced by access tokens.
type Team struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	IDs  string `gorm:"column:ids;type:varchar(20);uniqueIndex;not null"`
	Name string `gorm:"type:varchar(191)"`
}

// TableName keeps the legacy table name.
func (Team) TableName() string {
	return "sp_team"
}

// EtoD converts the database entity to the domain model.
func (t *Team) EtoD() *instance.Team {
	return &instance.Team{
		ID:   t.ID,
		IDs:  t.IDs,
		Name: t.Name,
	}
}
