// Package settings stores the site-wide settings edited on the admin page.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultStoreName  = "Toko Zek"
	DefaultThemeColor = "#3498db"
)

type Settings struct {
	StoreName        string `json:"storeName" validate:"required"`
	StoreDescription string `json:"storeDescription"`
	ThemeColor       string `json:"themeColor" validate:"required,hexcolor"`
}

// Defaults is what Get returns before anything was saved.
func Defaults() Settings {
	return Settings{StoreName: DefaultStoreName, ThemeColor: DefaultThemeColor}
}

var validate = validator.New()

var fieldNames = map[string]string{
	"StoreName":  "storeName",
	"ThemeColor": "themeColor",
}

type Service struct {
	kv     store.KV
	logger *slog.Logger
}

func NewService(kv store.KV, logger *slog.Logger) *Service {
	return &Service{kv: kv, logger: logger.With("component", "settings")}
}

// Get returns the stored settings with blank fields filled from Defaults.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	var stored Settings
	if _, err := store.GetJSON(ctx, s.kv, store.KeySiteSettings, &stored); err != nil {
		return Settings{}, apperr.Storage(err, "load settings")
	}
	if stored.StoreName == "" {
		stored.StoreName = DefaultStoreName
	}
	if stored.ThemeColor == "" {
		stored.ThemeColor = DefaultThemeColor
	}
	return stored, nil
}

func (s *Service) Save(ctx context.Context, in Settings) (Settings, error) {
	in.StoreName = strings.TrimSpace(in.StoreName)
	in.ThemeColor = strings.TrimSpace(in.ThemeColor)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Settings{}, apperr.ErrInvalidSettings.WithField(fieldNames[verrs[0].StructField()]).
				Withf("failed %s", verrs[0].Tag())
		}
		return Settings{}, err
	}

	op, err := store.PutJSON(store.KeySiteSettings, in)
	if err != nil {
		return Settings{}, apperr.Storage(err, "encode settings")
	}
	if err := s.kv.Apply(ctx, op); err != nil {
		return Settings{}, apperr.Storage(err, "write settings")
	}
	s.logger.Info("settings saved", "storeName", in.StoreName)
	return in, nil
}
