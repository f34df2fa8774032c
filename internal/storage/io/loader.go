package io

import (
	"context"
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/slok/opsdesk/internal/model"
)

// SeedYAMLRepository loads seed fixtures from YAML files.
type SeedYAMLRepository struct {
	fs fs.FS
}

// NewSeedYAMLRepository creates a new YAML seed repository.
func NewSeedYAMLRepository(filesystem fs.FS) *SeedYAMLRepository {
	return &SeedYAMLRepository{fs: filesystem}
}

// GetSeed loads a seed from a YAML file and validates its references.
func (r *SeedYAMLRepository) GetSeed(ctx context.Context, path string) (Seed, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed file: %w", err)
	}

	if ctx.Err() != nil {
		return Seed{}, ctx.Err()
	}

	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := s.validate(); err != nil {
		return Seed{}, fmt.Errorf("invalid seed: %w: %w", model.ErrNotValid, err)
	}

	return s, nil
}

// Seed is the YAML structure of a seed file. Rows reference each other by name.
type Seed struct {
	Operators    []OperatorSeed         `yaml:"operators"`
	Operations   []OperationSeed        `yaml:"operations"`
	C2Profiles   []C2ProfileSeed        `yaml:"c2_profiles"`
	Attacks      []AttackSeed           `yaml:"attacks"`
	Artifacts    []ArtifactSeed         `yaml:"artifacts"`
	PayloadTypes []PayloadTypeSeed      `yaml:"payload_types"`
	Transforms   []CommandTransformSeed `yaml:"command_transforms"`
	Payloads     []PayloadSeed          `yaml:"payloads"`
}

type OperatorSeed struct {
	Username         string   `yaml:"username"`
	Admin            bool     `yaml:"admin"`
	Inactive         bool     `yaml:"inactive"`
	Operations       []string `yaml:"operations"`
	CurrentOperation string   `yaml:"current_operation"`
}

type OperationSeed struct {
	Name     string `yaml:"name"`
	Admin    string `yaml:"admin"`
	Complete bool   `yaml:"complete"`
	AESPSK   string `yaml:"aes_psk"`
}

type C2ProfileSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Operator    string `yaml:"operator"`
}

type AttackSeed struct {
	TNum   string `yaml:"t_num"`
	Name   string `yaml:"name"`
	OS     string `yaml:"os"`
	Tactic string `yaml:"tactic"`
}

type ArtifactSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type PayloadTypeSeed struct {
	Name          string `yaml:"name"`
	Operator      string `yaml:"operator"`
	FileExtension string `yaml:"file_extension"`
	Wrapper       bool   `yaml:"wrapper"`
	// C2Profiles are the names of the seed c2 profiles the payload type speaks.
	C2Profiles []string        `yaml:"c2_profiles"`
	Commands   []CommandSeed   `yaml:"commands"`
	Transforms []TransformSeed `yaml:"transforms"`
}

type CommandSeed struct {
	Cmd         string          `yaml:"cmd"`
	Description string          `yaml:"description"`
	HelpCmd     string          `yaml:"help_cmd"`
	NeedsAdmin  bool            `yaml:"needs_admin"`
	IsExit      bool            `yaml:"is_exit"`
	Parameters  []ParameterSeed `yaml:"parameters"`
	// Attacks are technique numbers of the seed attacks.
	Attacks   []string               `yaml:"attacks"`
	Artifacts []ArtifactTemplateSeed `yaml:"artifacts"`
}

type ParameterSeed struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Hint     string `yaml:"hint"`
	Choices  string `yaml:"choices"`
	Required bool   `yaml:"required"`
}

type ArtifactTemplateSeed struct {
	Artifact       string `yaml:"artifact"`
	ArtifactString string `yaml:"artifact_string"`
	ReplaceString  string `yaml:"replace_string"`
	// Parameter binds the template to a parameter of the command.
	Parameter string `yaml:"parameter"`
}

type TransformSeed struct {
	Phase     string `yaml:"phase"`
	Name      string `yaml:"name"`
	Order     int    `yaml:"order"`
	Parameter string `yaml:"parameter"`
	Inactive  bool   `yaml:"inactive"`
}

type CommandTransformSeed struct {
	Operation   string `yaml:"operation"`
	Operator    string `yaml:"operator"`
	PayloadType string `yaml:"payload_type"`
	Command     string `yaml:"command"`
	Name        string `yaml:"name"`
	Order       int    `yaml:"order"`
	Parameter   string `yaml:"parameter"`
	Inactive    bool   `yaml:"inactive"`
}

type PayloadSeed struct {
	// UUID is generated when missing.
	UUID        string         `yaml:"uuid"`
	Tag         string         `yaml:"tag"`
	Operator    string         `yaml:"operator"`
	PayloadType string         `yaml:"payload_type"`
	C2Profile   string         `yaml:"c2_profile"`
	Operation   string         `yaml:"operation"`
	Location    string         `yaml:"location"`
	Callbacks   []CallbackSeed `yaml:"callbacks"`
}

type CallbackSeed struct {
	User           string `yaml:"user"`
	Host           string `yaml:"host"`
	PID            int    `yaml:"pid"`
	IP             string `yaml:"ip"`
	Description    string `yaml:"description"`
	IntegrityLevel int    `yaml:"integrity_level"`
	EncryptionType string `yaml:"encryption_type"`
	EncryptionKey  string `yaml:"encryption_key"`
	DecryptionKey  string `yaml:"decryption_key"`
}

type nameSet map[string]bool

func (n nameSet) add(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if n[name] {
		return fmt.Errorf("%s %q is duplicated", kind, name)
	}
	n[name] = true
	return nil
}

func (n nameSet) ref(kind, name string) error {
	if !n[name] {
		return fmt.Errorf("unknown %s %q", kind, name)
	}
	return nil
}

func (s Seed) validate() error {
	operators, operations := nameSet{}, nameSet{}
	for _, o := range s.Operators {
		if err := operators.add("operator", o.Username); err != nil {
			return err
		}
	}
	for _, o := range s.Operations {
		if err := operations.add("operation", o.Name); err != nil {
			return err
		}
		if err := operators.ref("operator", o.Admin); err != nil {
			return fmt.Errorf("operation %q admin: %w", o.Name, err)
		}
	}
	for _, o := range s.Operators {
		for _, op := range o.Operations {
			if err := operations.ref("operation", op); err != nil {
				return fmt.Errorf("operator %q: %w", o.Username, err)
			}
		}
		if o.CurrentOperation != "" && !slices.Contains(o.Operations, o.CurrentOperation) {
			return fmt.Errorf("operator %q current operation %q is not one of its operations", o.Username, o.CurrentOperation)
		}
	}

	c2s := nameSet{}
	for _, c := range s.C2Profiles {
		if err := c2s.add("c2 profile", c.Name); err != nil {
			return err
		}
		if err := operators.ref("operator", c.Operator); err != nil {
			return fmt.Errorf("c2 profile %q: %w", c.Name, err)
		}
	}
	attacks := nameSet{}
	for _, a := range s.Attacks {
		if err := attacks.add("attack", a.TNum); err != nil {
			return err
		}
	}
	artifacts := nameSet{}
	for _, a := range s.Artifacts {
		if err := artifacts.add("artifact", a.Name); err != nil {
			return err
		}
	}

	ptypes := nameSet{}
	commands := map[string]nameSet{}
	for _, pt := range s.PayloadTypes {
		if err := ptypes.add("payload type", pt.Name); err != nil {
			return err
		}
		if err := operators.ref("operator", pt.Operator); err != nil {
			return fmt.Errorf("payload type %q: %w", pt.Name, err)
		}
		for _, c2 := range pt.C2Profiles {
			if err := c2s.ref("c2 profile", c2); err != nil {
				return fmt.Errorf("payload type %q: %w", pt.Name, err)
			}
		}
		cmds := nameSet{}
		commands[pt.Name] = cmds
		for _, c := range pt.Commands {
			if err := cmds.add("command", c.Cmd); err != nil {
				return fmt.Errorf("payload type %q: %w", pt.Name, err)
			}
			if err := c.validate(attacks, artifacts); err != nil {
				return fmt.Errorf("payload type %q command %q: %w", pt.Name, c.Cmd, err)
			}
		}
		for _, t := range pt.Transforms {
			tr := model.Transform{Phase: model.TransformPhase(t.Phase), Name: t.Name, Order: t.Order}
			if err := tr.Validate(); err != nil {
				return fmt.Errorf("payload type %q transform: %w", pt.Name, err)
			}
		}
	}

	for _, t := range s.Transforms {
		if err := operations.ref("operation", t.Operation); err != nil {
			return fmt.Errorf("command transform: %w", err)
		}
		if err := operators.ref("operator", t.Operator); err != nil {
			return fmt.Errorf("command transform: %w", err)
		}
		if err := ptypes.ref("payload type", t.PayloadType); err != nil {
			return fmt.Errorf("command transform: %w", err)
		}
		if err := commands[t.PayloadType].ref("command", t.Command); err != nil {
			return fmt.Errorf("command transform: %w", err)
		}
		ct := model.CommandTransform{Name: t.Name, Order: t.Order}
		if err := ct.Validate(); err != nil {
			return fmt.Errorf("command transform: %w", err)
		}
	}

	for _, p := range s.Payloads {
		if err := operators.ref("operator", p.Operator); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		if err := ptypes.ref("payload type", p.PayloadType); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		if err := c2s.ref("c2 profile", p.C2Profile); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		if err := operations.ref("operation", p.Operation); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}

	return nil
}

func (c CommandSeed) validate(attacks, artifacts nameSet) error {
	params := nameSet{}
	for _, p := range c.Parameters {
		if err := params.add("parameter", p.Name); err != nil {
			return err
		}
		cp := model.CommandParameter{Name: p.Name, Type: model.ParameterType(p.Type)}
		if err := cp.Validate(); err != nil {
			return err
		}
	}
	for _, a := range c.Attacks {
		if err := attacks.ref("attack", a); err != nil {
			return err
		}
	}
	for _, a := range c.Artifacts {
		if err := artifacts.ref("artifact", a.Artifact); err != nil {
			return err
		}
		if a.Parameter != "" {
			if err := params.ref("parameter", a.Parameter); err != nil {
				return err
			}
		}
	}
	return nil
}
