package disksdk

import "time"

// RemoteListing maps file names in the remote folder to their
// last-modified time. It is owned by a single sync cycle: entries are
// removed as local files are matched, and whatever remains afterwards has
// no local counterpart.
type RemoteListing map[string]time.Time

type resourceItem struct {
	Name     string `json:"name"`
	Modified string `json:"modified"`
}

type resourceList struct {
	Embedded struct {
		Items []resourceItem `json:"items"`
	} `json:"_embedded"`
}

// uploadDestination is the pre-signed upload target returned by the API.
type uploadDestination struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}
