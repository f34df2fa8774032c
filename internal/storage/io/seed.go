package io

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
)

// SeederConfig is the configuration of the seeder.
type SeederConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *SeederConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "io.Seeder"})
	return nil
}

// Seeder writes seeds into the record store.
type Seeder struct {
	repo   storage.Repository
	logger log.Logger
}

// NewSeeder returns a new seeder.
func NewSeeder(cfg SeederConfig) (*Seeder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Seeder{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// SeedResult counts the created rows.
type SeedResult struct {
	Operators    int
	Operations   int
	PayloadTypes int
	Commands     int
	Transforms   int
	Payloads     int
	Callbacks    int
}

// seeding keeps the ids of the rows created so far by name.
type seeding struct {
	operators  map[string]*model.Operator
	operations map[string]int64
	c2s        map[string]int64
	attacks    map[string]int64
	artifacts  map[string]int64
	ptypes     map[string]int64
	commands   map[string]map[string]int64
	res        SeedResult
}

// Seed creates every row of the seed. Seeds are not idempotent, rows that already
// exist fail with model.ErrAlreadyExists.
func (s *Seeder) Seed(ctx context.Context, seed Seed) (*SeedResult, error) {
	st := &seeding{
		operators:  map[string]*model.Operator{},
		operations: map[string]int64{},
		c2s:        map[string]int64{},
		attacks:    map[string]int64{},
		artifacts:  map[string]int64{},
		ptypes:     map[string]int64{},
		commands:   map[string]map[string]int64{},
	}

	steps := []struct {
		name string
		fn   func(context.Context, *seeding, Seed) error
	}{
		{"operators", s.seedOperators},
		{"operations", s.seedOperations},
		{"memberships", s.seedMemberships},
		{"c2 profiles", s.seedC2Profiles},
		{"derivation catalog", s.seedDerivationCatalog},
		{"payload types", s.seedPayloadTypes},
		{"command transforms", s.seedCommandTransforms},
		{"payloads", s.seedPayloads},
	}
	for _, step := range steps {
		if err := step.fn(ctx, st, seed); err != nil {
			return nil, fmt.Errorf("could not seed %s: %w", step.name, err)
		}
		s.logger.Debugf("Seeded %s", step.name)
	}

	return &st.res, nil
}

func (s *Seeder) seedOperators(ctx context.Context, st *seeding, seed Seed) error {
	for _, o := range seed.Operators {
		op := &model.Operator{Username: o.Username, Admin: o.Admin, Active: !o.Inactive}
		if err := s.repo.CreateOperator(ctx, op); err != nil {
			return fmt.Errorf("operator %q: %w", o.Username, err)
		}
		st.operators[o.Username] = op
		st.res.Operators++
	}
	return nil
}

func (s *Seeder) seedOperations(ctx context.Context, st *seeding, seed Seed) error {
	for _, o := range seed.Operations {
		op := &model.Operation{Name: o.Name, AdminID: st.operators[o.Admin].ID, Complete: o.Complete, AESPSK: o.AESPSK}
		if err := s.repo.CreateOperation(ctx, op); err != nil {
			return fmt.Errorf("operation %q: %w", o.Name, err)
		}
		st.operations[o.Name] = op.ID
		st.res.Operations++
	}
	return nil
}

func (s *Seeder) seedMemberships(ctx context.Context, st *seeding, seed Seed) error {
	for _, o := range seed.Operators {
		op := st.operators[o.Username]
		for _, name := range o.Operations {
			if err := s.repo.AddOperatorToOperation(ctx, op.ID, st.operations[name]); err != nil {
				return fmt.Errorf("operator %q in %q: %w", o.Username, name, err)
			}
		}
		if o.CurrentOperation == "" {
			continue
		}
		current := st.operations[o.CurrentOperation]
		op.CurrentOperationID = &current
		if err := s.repo.UpdateOperator(ctx, *op); err != nil {
			return fmt.Errorf("operator %q current operation: %w", o.Username, err)
		}
	}
	return nil
}

func (s *Seeder) seedC2Profiles(ctx context.Context, st *seeding, seed Seed) error {
	for _, c := range seed.C2Profiles {
		c2 := &model.C2Profile{Name: c.Name, Description: c.Description, OperatorID: st.operators[c.Operator].ID}
		if err := s.repo.CreateC2Profile(ctx, c2); err != nil {
			return fmt.Errorf("c2 profile %q: %w", c.Name, err)
		}
		st.c2s[c.Name] = c2.ID
	}
	return nil
}

func (s *Seeder) seedDerivationCatalog(ctx context.Context, st *seeding, seed Seed) error {
	for _, a := range seed.Attacks {
		at := &model.Attack{TNum: a.TNum, Name: a.Name, OS: a.OS, Tactic: a.Tactic}
		if err := s.repo.CreateAttack(ctx, at); err != nil {
			return fmt.Errorf("attack %q: %w", a.TNum, err)
		}
		st.attacks[a.TNum] = at.ID
	}
	for _, a := range seed.Artifacts {
		ar := &model.Artifact{Name: a.Name, Description: a.Description}
		if err := s.repo.CreateArtifact(ctx, ar); err != nil {
			return fmt.Errorf("artifact %q: %w", a.Name, err)
		}
		st.artifacts[a.Name] = ar.ID
	}
	return nil
}

func (s *Seeder) seedPayloadTypes(ctx context.Context, st *seeding, seed Seed) error {
	for _, p := range seed.PayloadTypes {
		operatorID := st.operators[p.Operator].ID
		pt := &model.PayloadType{Name: p.Name, OperatorID: operatorID, FileExtension: p.FileExtension, Wrapper: p.Wrapper}
		if err := s.repo.CreatePayloadType(ctx, pt); err != nil {
			return fmt.Errorf("payload type %q: %w", p.Name, err)
		}
		st.ptypes[p.Name] = pt.ID
		st.commands[p.Name] = map[string]int64{}
		st.res.PayloadTypes++

		for _, c2 := range p.C2Profiles {
			link := &model.PayloadTypeC2Profile{PayloadTypeID: pt.ID, C2ProfileID: st.c2s[c2]}
			if err := s.repo.CreatePayloadTypeC2Profile(ctx, link); err != nil {
				return fmt.Errorf("payload type %q c2 profile %q: %w", p.Name, c2, err)
			}
		}

		for _, c := range p.Commands {
			id, err := s.seedCommand(ctx, st, pt.ID, operatorID, c)
			if err != nil {
				return fmt.Errorf("payload type %q command %q: %w", p.Name, c.Cmd, err)
			}
			st.commands[p.Name][c.Cmd] = id
		}

		for _, t := range p.Transforms {
			tr := &model.Transform{
				PayloadTypeID: pt.ID,
				Phase:         model.TransformPhase(t.Phase),
				OperatorID:    operatorID,
				Name:          t.Name,
				Order:         t.Order,
				Parameter:     t.Parameter,
				Active:        !t.Inactive,
			}
			if err := s.repo.CreateTransform(ctx, tr); err != nil {
				return fmt.Errorf("payload type %q transform %q: %w", p.Name, t.Name, err)
			}
			st.res.Transforms++
		}
	}
	return nil
}

func (s *Seeder) seedCommand(ctx context.Context, st *seeding, ptypeID, operatorID int64, c CommandSeed) (int64, error) {
	cmd := &model.Command{
		Cmd:           c.Cmd,
		PayloadTypeID: ptypeID,
		Description:   c.Description,
		HelpCmd:       c.HelpCmd,
		NeedsAdmin:    c.NeedsAdmin,
		IsExit:        c.IsExit,
		OperatorID:    operatorID,
	}
	if err := s.repo.CreateCommand(ctx, cmd); err != nil {
		return 0, err
	}
	st.res.Commands++

	params := map[string]int64{}
	for _, p := range c.Parameters {
		cp := &model.CommandParameter{
			CommandID: cmd.ID,
			Name:      p.Name,
			Type:      model.ParameterType(p.Type),
			Hint:      p.Hint,
			Choices:   p.Choices,
			Required:  p.Required,
		}
		if err := s.repo.CreateCommandParameter(ctx, cp); err != nil {
			return 0, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		params[p.Name] = cp.ID
	}

	for _, tnum := range c.Attacks {
		if err := s.repo.CreateAttackCommand(ctx, &model.AttackCommand{AttackID: st.attacks[tnum], CommandID: cmd.ID}); err != nil {
			return 0, fmt.Errorf("attack %q: %w", tnum, err)
		}
	}

	for _, a := range c.Artifacts {
		at := &model.ArtifactTemplate{
			CommandID:      cmd.ID,
			ArtifactID:     st.artifacts[a.Artifact],
			ArtifactString: a.ArtifactString,
			ReplaceString:  a.ReplaceString,
		}
		if a.Parameter != "" {
			id := params[a.Parameter]
			at.CommandParameterID = &id
		}
		if err := s.repo.CreateArtifactTemplate(ctx, at); err != nil {
			return 0, fmt.Errorf("artifact template %q: %w", a.Artifact, err)
		}
	}

	return cmd.ID, nil
}

func (s *Seeder) seedCommandTransforms(ctx context.Context, st *seeding, seed Seed) error {
	for _, t := range seed.Transforms {
		ct := &model.CommandTransform{
			CommandID:   st.commands[t.PayloadType][t.Command],
			OperationID: st.operations[t.Operation],
			OperatorID:  st.operators[t.Operator].ID,
			Name:        t.Name,
			Order:       t.Order,
			Parameter:   t.Parameter,
			Active:      !t.Inactive,
		}
		if err := s.repo.CreateCommandTransform(ctx, ct); err != nil {
			return fmt.Errorf("%s/%s transform %q: %w", t.PayloadType, t.Command, t.Name, err)
		}
		st.res.Transforms++
	}
	return nil
}

func (s *Seeder) seedPayloads(ctx context.Context, st *seeding, seed Seed) error {
	for _, p := range seed.Payloads {
		id := p.UUID
		if id == "" {
			id = uuid.NewString()
		}
		operatorID := st.operators[p.Operator].ID
		pl := &model.Payload{
			UUID:          id,
			Tag:           p.Tag,
			OperatorID:    operatorID,
			PayloadTypeID: st.ptypes[p.PayloadType],
			C2ProfileID:   st.c2s[p.C2Profile],
			OperationID:   st.operations[p.Operation],
			Location:      p.Location,
		}
		if err := s.repo.CreatePayload(ctx, pl); err != nil {
			return fmt.Errorf("payload %q: %w", id, err)
		}
		st.res.Payloads++

		for _, c := range p.Callbacks {
			cb := &model.Callback{
				User:           c.User,
				Host:           c.Host,
				PID:            c.PID,
				IP:             c.IP,
				Description:    c.Description,
				OperatorID:     operatorID,
				Active:         true,
				IntegrityLevel: c.IntegrityLevel,
				PayloadID:      pl.ID,
				OperationID:    pl.OperationID,
				EncryptionType: c.EncryptionType,
				EncryptionKey:  c.EncryptionKey,
				DecryptionKey:  c.DecryptionKey,
			}
			if err := s.repo.CreateCallback(ctx, cb); err != nil {
				return fmt.Errorf("payload %q callback on %q: %w", id, c.Host, err)
			}
			st.res.Callbacks++
		}
	}
	return nil
}
