package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig marks a catalog entry that is missing or carries an unusable field.
var ErrConfig = errors.New("invalid tool configuration")

// NeverUpdated is the local version recorded for tools that were never installed.
const NeverUpdated = "0"

// SourceMode selects how the latest version of a tool is discovered.
type SourceMode int

const (
	// SourceWeb scrapes a web page with regular expressions.
	SourceWeb SourceMode = iota
	// SourceReleaseAPI reads the latest release from a GitHub-style release API.
	SourceReleaseAPI
)

func (m SourceMode) String() string {
	switch m {
	case SourceReleaseAPI:
		return "github"
	default:
		return "web"
	}
}

// ParseSourceMode maps the catalog "from" field onto a SourceMode. An empty
// value selects SourceWeb.
func ParseSourceMode(value string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "web":
		return SourceWeb, nil
	case "github", "release-api":
		return SourceReleaseAPI, nil
	default:
		return SourceWeb, fmt.Errorf("%w: unknown source %q", ErrConfig, value)
	}
}

// Hooks holds the optional external command lines run around an update.
type Hooks struct {
	PreUpdate  string
	PostUnpack string
	PostUpdate string
}

// ToolSpec is one catalog entry. It is treated as an immutable value for the
// duration of an update; only Store.Persist produces a modified copy.
type ToolSpec struct {
	Name                string
	Source              SourceMode
	Location            string
	VersionPattern      string
	DownloadPattern     string
	DownloadURLPrefix   string
	DownloadURLOverride string
	ArchivePassword     string
	InstallPath         string
	LocalVersion        string
	Hooks               Hooks
}

// Validate reports missing required fields.
func (s ToolSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: tool name is empty", ErrConfig)
	}
	if strings.TrimSpace(s.Location) == "" {
		return fmt.Errorf("%w: %s: %q is not set", ErrConfig, s.Name, keyURL)
	}
	if strings.TrimSpace(s.InstallPath) == "" {
		return fmt.Errorf("%w: %s: %q is not set", ErrConfig, s.Name, keyFolder)
	}
	if s.Source == SourceWeb && s.VersionPattern == "" {
		return fmt.Errorf("%w: %s: %q is not set", ErrConfig, s.Name, keyVersionPattern)
	}
	return nil
}

// Catalog keys, shared by the INI and YAML codecs.
const (
	keyName            = "name"
	keyFrom            = "from"
	keyURL             = "url"
	keyVersionPattern  = "re_version"
	keyDownloadPattern = "re_download"
	keyUpdateURL       = "update_url"
	keyPassword        = "update_file_pass"
	keyFolder          = "folder"
	keyLocalVersion    = "local_version"
	keyPreUpdate       = "pre_update"
	keyPostUnpack      = "post_unpack"
	keyPostUpdate      = "post_update"
)

// fieldOrder is the order keys are written for entries that do not already
// carry them.
var fieldOrder = []string{
	keyFrom,
	keyURL,
	keyVersionPattern,
	keyDownloadPattern,
	keyUpdateURL,
	keyPassword,
	keyFolder,
	keyLocalVersion,
	keyPreUpdate,
	keyPostUnpack,
	keyPostUpdate,
}

// entry is the raw, undecoded form of one catalog section.
type entry struct {
	name   string
	fields map[string]string
}

func (e entry) clone() entry {
	fields := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	return entry{name: e.name, fields: fields}
}

// decode converts a raw entry into a ToolSpec. update_url acts as a prefix when
// re_download is set and as the literal download URL otherwise.
func (e entry) decode() (ToolSpec, error) {
	mode, err := ParseSourceMode(e.fields[keyFrom])
	if err != nil {
		return ToolSpec{}, fmt.Errorf("%s: %w", e.name, err)
	}

	spec := ToolSpec{
		Name:            e.name,
		Source:          mode,
		Location:        strings.TrimSpace(e.fields[keyURL]),
		VersionPattern:  e.fields[keyVersionPattern],
		DownloadPattern: e.fields[keyDownloadPattern],
		ArchivePassword: e.fields[keyPassword],
		InstallPath:     strings.TrimSpace(e.fields[keyFolder]),
		LocalVersion:    e.fields[keyLocalVersion],
		Hooks: Hooks{
			PreUpdate:  strings.TrimSpace(e.fields[keyPreUpdate]),
			PostUnpack: strings.TrimSpace(e.fields[keyPostUnpack]),
			PostUpdate: strings.TrimSpace(e.fields[keyPostUpdate]),
		},
	}
	if spec.LocalVersion == "" {
		spec.LocalVersion = NeverUpdated
	}

	updateURL := strings.TrimSpace(e.fields[keyUpdateURL])
	if spec.DownloadPattern != "" {
		spec.DownloadURLPrefix = updateURL
	} else {
		spec.DownloadURLOverride = updateURL
	}

	return spec, spec.Validate()
}
