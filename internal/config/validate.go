package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg along with any
// problems found. Errors make the config unusable; warnings do not.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Sources = trimList(out.Sources)
	out.App.DBFile = strings.TrimSpace(out.App.DBFile)
	out.Auth.DefaultAdminUsername = strings.TrimSpace(out.Auth.DefaultAdminUsername)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	if out.App.DBFile == "" {
		res.addErr("app.db_file is required")
	}

	if out.Store.BusyTimeoutSeconds <= 0 {
		res.addErr("store.busy_timeout_seconds must be > 0")
	} else if out.Store.BusyTimeoutSeconds > 300 {
		res.addWarn("store.busy_timeout_seconds is very high (%d); a locked database will hang that long.", out.Store.BusyTimeoutSeconds)
	}

	if strings.TrimSpace(out.Storage.AttachmentsDir) == "" {
		res.addErr("storage.attachments_dir is required")
	}
	if strings.TrimSpace(out.Storage.PhotosDir) == "" {
		res.addErr("storage.photos_dir is required")
	}

	// auth
	if out.Auth.DefaultAdminUsername == "" {
		res.addErr("auth.default_admin_username is required")
	}
	if out.Auth.DefaultAdminPassword == "" {
		res.addErr("auth.default_admin_password is required")
	} else if out.Auth.DefaultAdminPassword == StockAdminPassword {
		res.addWarn("auth.default_admin_password is the stock default; change the admin password after first login.")
	}
	if out.Auth.BcryptCost < bcrypt.MinCost || out.Auth.BcryptCost > bcrypt.MaxCost {
		res.addErr("auth.bcrypt_cost must be %d..%d", bcrypt.MinCost, bcrypt.MaxCost)
	} else if out.Auth.BcryptCost < bcrypt.DefaultCost {
		res.addWarn("auth.bcrypt_cost is below the bcrypt default (%d).", bcrypt.DefaultCost)
	}
	switch {
	case out.Auth.LoginAttemptsPerMinute < 0:
		res.addErr("auth.login_attempts_per_minute must be >= 0")
	case out.Auth.LoginAttemptsPerMinute == 0:
		res.addWarn("auth.login_attempts_per_minute is 0; login throttling is disabled.")
	case out.Auth.LoginBurst < 1:
		res.addErr("auth.login_burst must be >= 1 when throttling is enabled")
	}

	if len(out.Sources) == 0 {
		res.addWarn("sources is empty; no source suggestions will be offered.")
	}

	// logging
	if _, err := logrus.ParseLevel(out.Log.Level); err != nil {
		res.addErr("log.level %q is not a valid level", out.Log.Level)
	}
	if out.Log.Format != "text" && out.Log.Format != "json" {
		res.addErr("log.format must be text or json")
	}

	return out, res
}
