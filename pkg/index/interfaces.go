package index

import (
	"time"
)

type Index struct {
	FormatVersion string     `json:"format_version"`
	LastUpdate    time.Time  `json:"last_update"`
	Packages      []*Package `json:"packages"`
}

// Info represents index information.
type Info struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
}
