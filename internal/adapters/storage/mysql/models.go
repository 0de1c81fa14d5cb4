package mysql

import (
	"time"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
	"purrr-love/internal/domain/owners"
	"purrr-love/internal/domain/pets"
	"purrr-love/internal/domain/support"
)

// Modelos gorm: solo viven en este adapter, el dominio no conoce tags de gorm.

type ownerModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Role      string    `gorm:"size:16;not null;default:user"`
	Coins     int64     `gorm:"not null;default:100;check:owners_coins_non_negative,coins >= 0"`
	CreatedAt time.Time `gorm:"precision:3;not null"`
	UpdatedAt time.Time `gorm:"precision:3;not null"`
}

func (ownerModel) TableName() string { return "owners" }

type petModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	OwnerUserID     string `gorm:"size:64;not null;index:idx_pets_owner"`
	Name            string `gorm:"size:100;not null"`
	Breed           string `gorm:"size:50;not null;default:domestic"`
	Color           string `gorm:"size:50;not null;default:mixed"`
	Health          int    `gorm:"not null;default:100"`
	Happiness       int    `gorm:"not null;default:100"`
	Energy          int    `gorm:"not null;default:100"`
	Hunger          int    `gorm:"not null;default:0"`
	Cleanliness     int    `gorm:"not null;default:100"`
	Weight          *float64
	Temperature     *float64
	HeartRate       *int
	LastHealthCheck *time.Time `gorm:"precision:3"`
	CreatedAt       time.Time  `gorm:"precision:3;not null"`
	UpdatedAt       time.Time  `gorm:"precision:3;not null"`
}

func (petModel) TableName() string { return "pets" }

type healthLogModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	PetID       string `gorm:"size:64;not null;index:idx_health_logs_pet,priority:1"`
	Health      int    `gorm:"not null"`
	Happiness   int    `gorm:"not null"`
	Energy      int    `gorm:"not null"`
	Hunger      int    `gorm:"not null"`
	Cleanliness int    `gorm:"not null"`
	Weight      *float64
	Temperature *float64
	HeartRate   *int
	Notes       string    `gorm:"type:text;not null"`
	RecordedAt  time.Time `gorm:"precision:3;not null;index:idx_health_logs_pet,priority:2"`
}

func (healthLogModel) TableName() string { return "health_logs" }

type actionLogModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	OwnerID    string    `gorm:"size:64;not null;index:idx_action_logs_owner,priority:1"`
	PetID      string    `gorm:"size:64;not null"`
	Kind       string    `gorm:"size:16;not null"`
	ActionKey  string    `gorm:"size:64;not null"`
	CoinsDelta int64     `gorm:"not null"`
	CoinsAfter int64     `gorm:"not null"`
	Message    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"precision:3;not null;index:idx_action_logs_owner,priority:2"`
}

func (actionLogModel) TableName() string { return "action_logs" }

type ticketModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    *string   `gorm:"size:64;index:idx_support_tickets_user"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;not null"`
	Subject   string    `gorm:"size:500;not null"`
	Message   string    `gorm:"type:text;not null"`
	Priority  string    `gorm:"size:16;not null;default:medium"`
	Status    string    `gorm:"size:16;not null;default:open;index:idx_support_tickets_status"`
	CreatedAt time.Time `gorm:"precision:3;not null"`
	UpdatedAt time.Time `gorm:"precision:3;not null"`
}

func (ticketModel) TableName() string { return "support_tickets" }

// allModels es el orden de AutoMigrate.
func allModels() []any {
	return []any{&ownerModel{}, &petModel{}, &healthLogModel{}, &actionLogModel{}, &ticketModel{}}
}

func ownerFromDomain(o owners.Owner) ownerModel {
	return ownerModel{
		ID:        o.ID,
		Role:      string(o.Role),
		Coins:     o.Coins,
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
	}
}

func (m ownerModel) toDomain() owners.Owner {
	return owners.Owner{
		ID:        m.ID,
		Role:      owners.Role(m.Role),
		Coins:     m.Coins,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func petFromDomain(p pets.Pet) petModel {
	return petModel{
		ID:              p.ID,
		OwnerUserID:     p.OwnerUserID,
		Name:            p.Name,
		Breed:           p.Breed,
		Color:           p.Color,
		Health:          p.Stats.Health,
		Happiness:       p.Stats.Happiness,
		Energy:          p.Stats.Energy,
		Hunger:          p.Stats.Hunger,
		Cleanliness:     p.Stats.Cleanliness,
		Weight:          p.Vitals.Weight,
		Temperature:     p.Vitals.Temperature,
		HeartRate:       p.Vitals.HeartRate,
		LastHealthCheck: utcPtr(p.LastHealthCheck),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func (m petModel) toDomain() pets.Pet {
	return pets.Pet{
		ID:          m.ID,
		OwnerUserID: m.OwnerUserID,
		Name:        m.Name,
		Breed:       m.Breed,
		Color:       m.Color,
		Stats: pets.Stats{
			Health:      m.Health,
			Happiness:   m.Happiness,
			Energy:      m.Energy,
			Hunger:      m.Hunger,
			Cleanliness: m.Cleanliness,
		},
		Vitals: pets.Vitals{
			Weight:      m.Weight,
			Temperature: m.Temperature,
			HeartRate:   m.HeartRate,
		},
		LastHealthCheck: utcPtr(m.LastHealthCheck),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

// statsUpdates son las columnas que escribe Tx.UpdatePetStats.
func statsUpdates(p pets.Pet) map[string]any {
	return map[string]any{
		"health":            p.Stats.Health,
		"happiness":         p.Stats.Happiness,
		"energy":            p.Stats.Energy,
		"hunger":            p.Stats.Hunger,
		"cleanliness":       p.Stats.Cleanliness,
		"weight":            p.Vitals.Weight,
		"temperature":       p.Vitals.Temperature,
		"heart_rate":        p.Vitals.HeartRate,
		"last_health_check": utcPtr(p.LastHealthCheck),
		"updated_at":        p.UpdatedAt.UTC(),
	}
}

func healthLogFromDomain(l health.Log) healthLogModel {
	return healthLogModel{
		ID:          l.ID,
		PetID:       l.PetID,
		Health:      l.Stats.Health,
		Happiness:   l.Stats.Happiness,
		Energy:      l.Stats.Energy,
		Hunger:      l.Stats.Hunger,
		Cleanliness: l.Stats.Cleanliness,
		Weight:      l.Vitals.Weight,
		Temperature: l.Vitals.Temperature,
		HeartRate:   l.Vitals.HeartRate,
		Notes:       l.Notes,
		RecordedAt:  l.RecordedAt.UTC(),
	}
}

func (m healthLogModel) toDomain() health.Log {
	return health.Log{
		ID:    m.ID,
		PetID: m.PetID,
		Stats: pets.Stats{
			Health:      m.Health,
			Happiness:   m.Happiness,
			Energy:      m.Energy,
			Hunger:      m.Hunger,
			Cleanliness: m.Cleanliness,
		},
		Vitals: pets.Vitals{
			Weight:      m.Weight,
			Temperature: m.Temperature,
			HeartRate:   m.HeartRate,
		},
		Notes:      m.Notes,
		RecordedAt: m.RecordedAt.UTC(),
	}
}

func actionLogFromDomain(l economy.ActionLog) actionLogModel {
	return actionLogModel{
		ID:         l.ID,
		OwnerID:    l.OwnerID,
		PetID:      l.PetID,
		Kind:       string(l.Kind),
		ActionKey:  l.ActionKey,
		CoinsDelta: l.CoinsDelta,
		CoinsAfter: l.CoinsAfter,
		Message:    l.Message,
		CreatedAt:  l.CreatedAt.UTC(),
	}
}

func (m actionLogModel) toDomain() economy.ActionLog {
	return economy.ActionLog{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		PetID:      m.PetID,
		Kind:       catalog.Kind(m.Kind),
		ActionKey:  m.ActionKey,
		CoinsDelta: m.CoinsDelta,
		CoinsAfter: m.CoinsAfter,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

func ticketFromDomain(t support.Ticket) ticketModel {
	m := ticketModel{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Subject:   t.Subject,
		Message:   t.Message,
		Priority:  string(t.Priority),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
	if t.UserID != "" {
		uid := t.UserID
		m.UserID = &uid
	}
	return m
}

func (m ticketModel) toDomain() support.Ticket {
	t := support.Ticket{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Priority:  support.Priority(m.Priority),
		Status:    support.Status(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.UserID != nil {
		t.UserID = *m.UserID
	}
	return t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
