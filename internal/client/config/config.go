package config

import (
	"errors"
	"strconv"
	"time"

	"github.com/mirrorbox/mirrorbox/internal/utils"
)

var (
	ErrNoToken         = errors.New("config: ACCESS_TOKEN is required")
	ErrNoRemoteFolder  = errors.New("config: REMOTE_FOLDER_NAME is required")
	ErrBadSyncPeriod   = errors.New("config: SYNC_PERIOD_SECONDS must be a positive integer")
	ErrLocalDirMissing = errors.New("config: LOCAL_FOLDER_PATH does not exist")
)

// Config is built once at startup and handed to the constructors. There
// is no ambient configuration state.
type Config struct {
	Token        string
	RemoteFolder string
	LocalDir     string
	SyncPeriod   time.Duration
	BaseURL      string
	LogDir       string
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrNoToken
	}
	if c.RemoteFolder == "" {
		return ErrNoRemoteFolder
	}
	if c.SyncPeriod <= 0 {
		return ErrBadSyncPeriod
	}
	if !utils.DirExists(c.LocalDir) {
		return ErrLocalDirMissing
	}
	return nil
}

// PeriodFromSeconds parses the SYNC_PERIOD_SECONDS value.
func PeriodFromSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, ErrBadSyncPeriod
	}
	return time.Duration(seconds) * time.Second, nil
}
