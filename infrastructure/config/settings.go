package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexmorbo/bttn-relay/domain/button"
)

const defaultButtonName = "incident"

// Settings is the shape of settings.yaml and of every buttons/<name>.yaml
// override file.
type Settings struct {
	Messaging MessagingSettings  `yaml:"messaging"`
	Telephony TelephonySettings  `yaml:"telephony"`
	Server    ServerSettings     `yaml:"server"`
	IdleReset string             `yaml:"idle_reset"`
	Actions   []ActionItemConfig `yaml:"actions"`
}

type MessagingSettings struct {
	Token        string   `yaml:"token"`
	Room         string   `yaml:"room"`
	Moderators   []string `yaml:"moderators"`
	Participants []string `yaml:"participants"`
}

type TelephonySettings struct {
	AccountSID            string `yaml:"account_sid"`
	AuthToken             string `yaml:"auth_token"`
	CustomerServiceNumber string `yaml:"customer_service_number"`
}

type ServerSettings struct {
	Port    int    `yaml:"port"`
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
	Default string `yaml:"default"`
}

type ActionItemConfig struct {
	Message  string       `yaml:"message"`
	Markdown string       `yaml:"markdown"`
	File     string       `yaml:"file"`
	Label    string       `yaml:"label"`
	Type     string       `yaml:"type"`
	SMS      *PhoneConfig `yaml:"sms"`
	Call     *PhoneConfig `yaml:"call"`
}

// PhoneConfig accepts either a mapping or a list of single-key mappings:
//
//	sms: {message: help, numbers: ["+1"]}
//	sms:
//	  - message: help
//	  - number: "+1"
type PhoneConfig struct {
	Message string
	Numbers []string
	From    string
	Say     string
	URL     string
}

type phoneEntry struct {
	Message string   `yaml:"message"`
	Number  string   `yaml:"number"`
	Numbers []string `yaml:"numbers"`
	From    string   `yaml:"from"`
	Say     string   `yaml:"say"`
	URL     string   `yaml:"url"`
}

func (p *PhoneConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var entry phoneEntry
		if err := node.Decode(&entry); err != nil {
			return err
		}
		p.apply(entry)
	case yaml.SequenceNode:
		for _, child := range node.Content {
			var entry phoneEntry
			if err := child.Decode(&entry); err != nil {
				return err
			}
			p.apply(entry)
		}
	default:
		return fmt.Errorf("line %d: expected mapping or list of mappings", node.Line)
	}
	return nil
}

func (p *PhoneConfig) apply(e phoneEntry) {
	if e.Message != "" {
		p.Message = e.Message
	}
	if e.Number != "" {
		p.Numbers = append(p.Numbers, e.Number)
	}
	p.Numbers = append(p.Numbers, e.Numbers...)
	if e.From != "" {
		p.From = e.From
	}
	if e.Say != "" {
		p.Say = e.Say
	}
	if e.URL != "" {
		p.URL = e.URL
	}
}

func LoadSettings(path string) (*Settings, error) {
	s, err := readSettings(path)
	if err != nil {
		if os.IsNotExist(err) {
			s = &Settings{}
			s.applyDefaults()
			return s, nil
		}
		return nil, err
	}
	s.applyDefaults()
	return s, nil
}

// LoadOverride reads a button file without applying defaults so that unset
// fields do not shadow generic settings during the merge.
func LoadOverride(path string) (*Settings, error) {
	return readSettings(path)
}

func readSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.Server.Default == "" {
		s.Server.Default = defaultButtonName
	}
}

// ButtonConfig converts settings into the configuration of a single button.
func (s *Settings) ButtonConfig() (button.Config, error) {
	idle, err := parseIdleReset(s.IdleReset)
	if err != nil {
		return button.Config{}, err
	}

	actions := make([]button.ActionItem, 0, len(s.Actions))
	for _, a := range s.Actions {
		actions = append(actions, a.toDomain())
	}

	return button.Config{
		Actions:      actions,
		Room:         s.Messaging.Room,
		Moderators:   s.Messaging.Moderators,
		Participants: s.Messaging.Participants,
		CallerID:     s.Telephony.CustomerServiceNumber,
		IdleReset:    idle,
	}, nil
}

func (a ActionItemConfig) toDomain() button.ActionItem {
	item := button.ActionItem{
		Message:  a.Message,
		Markdown: a.Markdown,
	}
	if a.File != "" {
		item.File = &button.FileSpec{Path: a.File, Label: a.Label, MimeType: a.Type}
	}
	if a.SMS != nil {
		item.SMS = &button.SMSSpec{Message: a.SMS.Message, Numbers: a.SMS.Numbers, From: a.SMS.From}
	}
	if a.Call != nil {
		item.Call = &button.CallSpec{Numbers: a.Call.Numbers, From: a.Call.From, Say: a.Call.Say, URL: a.Call.URL}
	}
	return item
}

// parseIdleReset accepts a Go duration or a bare integer of minutes.
func parseIdleReset(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		if minutes < 0 {
			return 0, fmt.Errorf("%w: idle_reset must not be negative", button.ErrConfiguration)
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid idle_reset %q", button.ErrConfiguration, value)
	}
	return d, nil
}
