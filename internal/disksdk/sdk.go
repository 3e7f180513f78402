// Package disksdk is a minimal client for the Yandex Disk REST API,
// covering the handful of resource operations the mirror needs.
package disksdk

import (
	"fmt"

	"github.com/imroc/req/v3"
	"github.com/mirrorbox/mirrorbox/internal/version"
)

// DefaultBaseURL is the public Yandex Disk API endpoint.
const DefaultBaseURL = "https://cloud-api.yandex.net/v1/disk"

const (
	resourcesPath = "/resources"
	uploadPath    = "/resources/upload"

	// listLimit caps a folder listing at one page. The mirror works on a
	// single flat folder, so paging is not implemented.
	listLimit = "10000"
)

type Config struct {
	// BaseURL of the Disk API. Defaults to DefaultBaseURL.
	BaseURL string
	// Token is the OAuth access token.
	Token string
	// Folder is the remote folder kept in sync.
	Folder string
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrNoToken
	}
	if c.Folder == "" {
		return ErrNoFolder
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return nil
}

// DiskSDK talks to one remote folder on Yandex Disk. It performs no
// retries and no caching. Retry policy belongs to the sync scheduler.
type DiskSDK struct {
	client *req.Client
	folder string
}

func New(cfg *Config) (*DiskSDK, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := req.C().
		SetBaseURL(cfg.BaseURL).
		SetUserAgent(fmt.Sprintf("%s/%s", version.AppName, version.Version)).
		SetCommonHeader("Authorization", "OAuth "+cfg.Token).
		SetCommonContentType("application/json").
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &DiskSDK{
		client: client,
		folder: cfg.Folder,
	}, nil
}

// Folder returns the remote folder this client is bound to.
func (s *DiskSDK) Folder() string {
	return s.folder
}

func (s *DiskSDK) remotePath(name string) string {
	return s.folder + "/" + name
}
