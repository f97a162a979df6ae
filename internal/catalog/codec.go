package catalog

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// codec converts between the on-disk catalog and raw entries.
type codec interface {
	decode(data []byte) ([]entry, error)
	encode(entries []entry) ([]byte, error)
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return &yamlCodec{}
	default:
		return &iniCodec{}
	}
}

func init() {
	// ini.v1 only exposes the [DEFAULT] header switch as a package variable.
	// Without the header, inherited keys are written above the first section
	// and other INI parsers reject the file.
	ini.DefaultHeader = true
}

// iniCodec keeps the parsed file around so rewrites preserve comments, key
// order and sections it does not understand.
type iniCodec struct {
	file *ini.File
}

// Values are kept literally: surrounding quotes and trailing backslashes are
// part of patterns and paths.
var iniLoadOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	IgnoreInlineComment:        true,
	AllowPythonMultilineValues: true,
	PreserveSurroundedQuote:    true,
	IgnoreContinuation:         true,
}

// "%%" is the escaped form of a literal "%".
var (
	unescapePercent = strings.NewReplacer("%%", "%")
	escapePercent   = strings.NewReplacer("%", "%%")
)

func iniValue(key *ini.Key) string {
	return unescapePercent.Replace(key.Value())
}

func (c *iniCodec) decode(data []byte) ([]entry, error) {
	file, err := ini.LoadSources(iniLoadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parse ini catalog: %w", err)
	}
	c.file = file

	defaults := map[string]string{}
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		defaults[key.Name()] = iniValue(key)
	}

	var entries []entry
	for _, name := range file.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		fields := make(map[string]string, len(defaults))
		for k, v := range defaults {
			fields[k] = v
		}
		for _, key := range file.Section(name).Keys() {
			fields[key.Name()] = iniValue(key)
		}
		entries = append(entries, entry{name: name, fields: fields})
	}
	return entries, nil
}

func (c *iniCodec) encode(entries []entry) ([]byte, error) {
	if c.file == nil {
		c.file = ini.Empty(iniLoadOptions)
	}
	for _, e := range entries {
		sec := c.file.Section(e.name)
		for _, key := range fieldOrder {
			value, ok := e.fields[key]
			if !ok {
				continue
			}
			if sec.HasKey(key) {
				if iniValue(sec.Key(key)) != value {
					sec.Key(key).SetValue(escapePercent.Replace(value))
				}
				continue
			}
			if inherited := c.file.Section(ini.DefaultSection); inherited.HasKey(key) && iniValue(inherited.Key(key)) == value {
				continue
			}
			if _, err := sec.NewKey(key, escapePercent.Replace(value)); err != nil {
				return nil, fmt.Errorf("write %s.%s: %w", e.name, key, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := c.file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode ini catalog: %w", err)
	}
	return buf.Bytes(), nil
}

type yamlTool struct {
	Name            string `yaml:"name"`
	From            string `yaml:"from,omitempty"`
	URL             string `yaml:"url,omitempty"`
	VersionPattern  string `yaml:"re_version,omitempty"`
	DownloadPattern string `yaml:"re_download,omitempty"`
	UpdateURL       string `yaml:"update_url,omitempty"`
	Password        string `yaml:"update_file_pass,omitempty"`
	Folder          string `yaml:"folder,omitempty"`
	LocalVersion    string `yaml:"local_version,omitempty"`
	PreUpdate       string `yaml:"pre_update,omitempty"`
	PostUnpack      string `yaml:"post_unpack,omitempty"`
	PostUpdate      string `yaml:"post_update,omitempty"`
}

type yamlCatalog struct {
	Tools []yamlTool `yaml:"tools"`
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte) ([]entry, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml catalog: %w", err)
	}
	entries := make([]entry, 0, len(doc.Tools))
	for _, t := range doc.Tools {
		fields := map[string]string{
			keyFrom:            t.From,
			keyURL:             t.URL,
			keyVersionPattern:  t.VersionPattern,
			keyDownloadPattern: t.DownloadPattern,
			keyUpdateURL:       t.UpdateURL,
			keyPassword:        t.Password,
			keyFolder:          t.Folder,
			keyLocalVersion:    t.LocalVersion,
			keyPreUpdate:       t.PreUpdate,
			keyPostUnpack:      t.PostUnpack,
			keyPostUpdate:      t.PostUpdate,
		}
		for k, v := range fields {
			if v == "" {
				delete(fields, k)
			}
		}
		entries = append(entries, entry{name: t.Name, fields: fields})
	}
	return entries, nil
}

func (yamlCodec) encode(entries []entry) ([]byte, error) {
	doc := yamlCatalog{Tools: make([]yamlTool, 0, len(entries))}
	for _, e := range entries {
		doc.Tools = append(doc.Tools, yamlTool{
			Name:            e.name,
			From:            e.fields[keyFrom],
			URL:             e.fields[keyURL],
			VersionPattern:  e.fields[keyVersionPattern],
			DownloadPattern: e.fields[keyDownloadPattern],
			UpdateURL:       e.fields[keyUpdateURL],
			Password:        e.fields[keyPassword],
			Folder:          e.fields[keyFolder],
			LocalVersion:    e.fields[keyLocalVersion],
			PreUpdate:       e.fields[keyPreUpdate],
			PostUnpack:      e.fields[keyPostUnpack],
			PostUpdate:      e.fields[keyPostUpdate],
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml catalog: %w", err)
	}
	return buf.Bytes(), nil
}
