package services

import (
	"context"
	"errors"
	"strings"

	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
	"ventas-backend/internal/repositories"
)

// Known preference keys. Table preferences use the "table." prefix, e.g.
// "table.customers.columns".
const (
	PrefReduceAnimations = "reduceAnimations"
	PrefExcelFormLayout  = "excelFormLayout"
	PrefLastBackupDate   = "lastBackupDate"
	PrefTheme            = "theme"
	PrefLanguage         = "language"
	PrefCurrency         = "currency"

	tablePrefPrefix = "table."
)

var knownPreferences = map[string]bool{
	PrefReduceAnimations: true,
	PrefExcelFormLayout:  true,
	PrefLastBackupDate:   true,
	PrefTheme:            true,
	PrefLanguage:         true,
	PrefCurrency:         true,
}

// ValidPreferenceKey reports whether key may be stored.
func ValidPreferenceKey(key string) bool {
	return knownPreferences[key] || (strings.HasPrefix(key, tablePrefPrefix) && len(key) > len(tablePrefPrefix))
}

type PreferenceService struct {
	Prefs    PreferenceStore
	Notifier events.Notifier
}

func NewPreferenceService(prefs PreferenceStore, notifier events.Notifier) *PreferenceService {
	return &PreferenceService{Prefs: prefs, Notifier: notifier}
}

// All returns every stored preference as a key/value map.
func (s *PreferenceService) All(ctx context.Context) (map[string]string, error) {
	list, err := s.Prefs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, p := range list {
		out[p.Key] = p.Value
	}
	return out, nil
}

// Get returns a preference value, or "" when it was never set.
func (s *PreferenceService) Get(ctx context.Context, key string) (string, error) {
	p, err := s.Prefs.Get(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// Set stores a value. Values are opaque; only the key is checked.
func (s *PreferenceService) Set(ctx context.Context, key, value string) (models.Ack, error) {
	if !ValidPreferenceKey(key) {
		return models.Ack{}, invalid("key", "preferencia desconocida")
	}
	if err := s.Prefs.Set(ctx, key, value); err != nil {
		return models.Ack{}, err
	}
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, events.EntityPreferences)
	}
	return models.Ack{Entity: events.EntityPreferences, Action: "set"}, nil
}
