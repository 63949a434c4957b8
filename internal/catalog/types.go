package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Version is a version string that the API sometimes encodes as a JSON
// number and sometimes as a string
type Version string

// UnmarshalJSON accepts strings, numbers and null
func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Version(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Version(n.String())
	return nil
}

// String returns the version as a plain string
func (v Version) String() string {
	return string(v)
}

// SubPath is one install directory bundled in a catalog upload
type SubPath struct {
	Path                 string   `json:"path"`
	AddOnVersion         Version  `json:"addOnVersion"`
	Version              Version  `json:"version,omitempty"`
	RequiredDependencies []string `json:"requiredDependencies,omitempty"`
	OptionalDependencies []string `json:"optionalDependencies,omitempty"`
}

// IsBare reports whether the sub-path names a top-level folder rather than a
// nested route
func (s SubPath) IsBare() bool {
	return s.Path != "" && !strings.ContainsAny(s.Path, `/\`)
}

// Entry is one record of the remote file list
type Entry struct {
	ID          int       `json:"id"`
	CategoryID  int       `json:"categoryId,omitempty"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Version     Version   `json:"version"`
	LastUpdate  int64     `json:"lastUpdate,omitempty"` // Unix milliseconds
	FileInfoURI string    `json:"fileInfoUri,omitempty"`
	Downloads   int       `json:"downloads,omitempty"`
	Checksum    string    `json:"checksum"`
	Addons      []SubPath `json:"addons"`

	// NestedVersion is derived by the normalizer from the first bare sub-path
	NestedVersion string `json:"-"`
}

// FileDetails is one record returned by the per-item details endpoint
type FileDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Version     Version `json:"version"`
	Author      string  `json:"author,omitempty"`
	Checksum    string  `json:"checksum"` // Hex MD5 of the archive
	FileName    string  `json:"fileName"`
	DownloadURI string  `json:"downloadUri"`
	Description string  `json:"description,omitempty"` // HTML
	ChangeLog   string  `json:"changeLog,omitempty"`   // HTML
}

// Game is one game advertised by the global config
type Game struct {
	GameID     string `json:"gameID"`
	GameConfig string `json:"gameConfig"`
}

// GlobalConfig is the first document of the discovery chain
type GlobalConfig struct {
	Games []Game `json:"games"`
}

// APIFeeds lists the per-game endpoints
type APIFeeds struct {
	FileList    string `json:"fileList"`
	FileDetails string `json:"fileDetails"`
}

// GameConfig is the second document of the discovery chain
type GameConfig struct {
	APIFeeds APIFeeds `json:"apiFeeds"`
}

// Constants
const (
	// GlobalConfigURL is the entry point of the discovery chain
	GlobalConfigURL = "https://api.mmoui.com/v4/globalconfig.json"

	// GameID identifies ESO in the global config
	GameID = "ESO"

	// Known defaults; a warning is logged when the chain resolves elsewhere
	DefaultGameConfigURL  = "https://api.mmoui.com/v4/game/ESO/gameconfig.json"
	DefaultFileListURL    = "https://api.mmoui.com/v4/game/ESO/filelist.json"
	DefaultFileDetailsURL = "https://api.mmoui.com/v4/game/ESO/filedetails/"

	userAgent = "esoctl/1.0 (ESO addon manager)"
)
