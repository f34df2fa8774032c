package storage

import (
	"context"

	"github.com/slok/opsdesk/internal/model"
)

// OperatorRepository persists operators, operations and memberships.
type OperatorRepository interface {
	CreateOperator(ctx context.Context, o *model.Operator) error
	GetOperator(ctx context.Context, id int64) (*model.Operator, error)
	GetOperatorByUsername(ctx context.Context, username string) (*model.Operator, error)
	UpdateOperator(ctx context.Context, o model.Operator) error
	ListOperators(ctx context.Context) ([]model.Operator, error)
	CreateOperation(ctx context.Context, o *model.Operation) error
	GetOperation(ctx context.Context, id int64) (*model.Operation, error)
	GetOperationByName(ctx context.Context, name string) (*model.Operation, error)
	UpdateOperation(ctx context.Context, o model.Operation) error
	AddOperatorToOperation(ctx context.Context, operatorID, operationID int64) error
	ListOperatorOperations(ctx context.Context, operatorID int64) ([]model.Operation, error)
}

// CommandRepository persists payload types, commands and their parameter schemas.
type CommandRepository interface {
	CreatePayloadType(ctx context.Context, p *model.PayloadType) error
	GetPayloadType(ctx context.Context, id int64) (*model.PayloadType, error)
	GetPayloadTypeByName(ctx context.Context, name string) (*model.PayloadType, error)
	ListPayloadTypes(ctx context.Context) ([]model.PayloadType, error)
	CreateC2Profile(ctx context.Context, c *model.C2Profile) error
	GetC2Profile(ctx context.Context, id int64) (*model.C2Profile, error)
	GetC2ProfileByName(ctx context.Context, name string) (*model.C2Profile, error)
	ListC2Profiles(ctx context.Context) ([]model.C2Profile, error)
	CreatePayloadTypeC2Profile(ctx context.Context, p *model.PayloadTypeC2Profile) error
	GetPayloadTypeC2Profile(ctx context.Context, id int64) (*model.PayloadTypeC2Profile, error)
	ListPayloadTypeC2Profiles(ctx context.Context) ([]model.PayloadTypeC2Profile, error)
	CreateCommand(ctx context.Context, c *model.Command) error
	GetCommand(ctx context.Context, id int64) (*model.Command, error)
	GetCommandByName(ctx context.Context, cmd string, payloadTypeID int64) (*model.Command, error)
	ListCommands(ctx context.Context, payloadTypeID int64) ([]model.Command, error)
	UpdateCommand(ctx context.Context, c model.Command) error
	DeleteCommand(ctx context.Context, id int64) error
	CreateCommandParameter(ctx context.Context, p *model.CommandParameter) error
	GetCommandParameter(ctx context.Context, id int64) (*model.CommandParameter, error)
	ListCommandParameters(ctx context.Context, commandID int64) ([]model.CommandParameter, error)
	DeleteCommandParameter(ctx context.Context, id int64) error
}

// TransformRepository persists transform chain configuration.
type TransformRepository interface {
	CreateCommandTransform(ctx context.Context, c *model.CommandTransform) error
	GetCommandTransform(ctx context.Context, id int64) (*model.CommandTransform, error)
	UpdateCommandTransform(ctx context.Context, c model.CommandTransform) error
	DeleteCommandTransform(ctx context.Context, id int64) error
	// ListCommandTransforms returns the chain ordered by ascending order.
	ListCommandTransforms(ctx context.Context, commandID, operationID int64, onlyActive bool) ([]model.CommandTransform, error)
	CreateTransform(ctx context.Context, t *model.Transform) error
	// ListTransforms returns the chain ordered by ascending order.
	ListTransforms(ctx context.Context, payloadTypeID int64, phase model.TransformPhase, onlyActive bool) ([]model.Transform, error)
}

// CallbackRepository persists payloads, callbacks and loaded commands.
type CallbackRepository interface {
	CreatePayload(ctx context.Context, p *model.Payload) error
	GetPayload(ctx context.Context, id int64) (*model.Payload, error)
	GetPayloadByUUID(ctx context.Context, uuid string) (*model.Payload, error)
	ListPayloads(ctx context.Context, operationID int64, includeDeleted bool) ([]model.Payload, error)
	// CountPayloadsByLocation counts non deleted payloads stored at path.
	CountPayloadsByLocation(ctx context.Context, path string) (int, error)
	CreateCallback(ctx context.Context, c *model.Callback) error
	GetCallback(ctx context.Context, id int64) (*model.Callback, error)
	ListCallbacks(ctx context.Context, operationID int64) ([]model.Callback, error)
	UpdateCallback(ctx context.Context, c model.Callback) error
	// UpsertLoadedCommand creates or refreshes the version of a command loaded in a callback.
	UpsertLoadedCommand(ctx context.Context, l *model.LoadedCommand) error
	ListLoadedCommands(ctx context.Context, callbackID int64) ([]model.LoadedCommand, error)
}

// TaskRepository persists tasks and responses.
type TaskRepository interface {
	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, q model.TaskQuery) ([]model.Task, error)
	// UpdateTaskStatus moves a task from one status to another only if the task is
	// still in the from status. Returns false if another writer won.
	UpdateTaskStatus(ctx context.Context, id int64, from, to model.TaskStatus) (bool, error)
	UpdateTaskComment(ctx context.Context, id int64, comment string, operatorID *int64) error
	CreateResponse(ctx context.Context, r *model.Response) error
	GetResponse(ctx context.Context, id int64) (*model.Response, error)
	ListResponses(ctx context.Context, taskID int64) ([]model.Response, error)
	ListOperationResponses(ctx context.Context, operationID int64) ([]model.Response, error)
}

// FileRepository persists file metadata.
type FileRepository interface {
	CreateFileMeta(ctx context.Context, f *model.FileMeta) error
	GetFileMeta(ctx context.Context, id int64) (*model.FileMeta, error)
	ListFileMeta(ctx context.Context, q model.FileMetaQuery) ([]model.FileMeta, error)
	UpdateFileMeta(ctx context.Context, f model.FileMeta) error
	DeleteFileMeta(ctx context.Context, id int64) error
	// CountFileMetaByPath counts non deleted file metas stored at path.
	CountFileMetaByPath(ctx context.Context, path string) (int, error)
}

// DerivationRepository persists ATT&CK and artifact mappings and their per task instances.
type DerivationRepository interface {
	CreateAttack(ctx context.Context, a *model.Attack) error
	GetAttackByTNum(ctx context.Context, tnum string) (*model.Attack, error)
	CreateAttackCommand(ctx context.Context, a *model.AttackCommand) error
	ListAttackCommands(ctx context.Context, commandID int64) ([]model.AttackCommand, error)
	// GetOrCreateAttackTask is idempotent per (attack, task).
	GetOrCreateAttackTask(ctx context.Context, attackID, taskID int64) (*model.AttackTask, bool, error)
	ListAttackTasks(ctx context.Context, taskID int64) ([]model.AttackTask, error)
	DeleteAttackTask(ctx context.Context, id int64) error
	CreateArtifact(ctx context.Context, a *model.Artifact) error
	GetArtifactByName(ctx context.Context, name string) (*model.Artifact, error)
	CreateArtifactTemplate(ctx context.Context, a *model.ArtifactTemplate) error
	ListArtifactTemplates(ctx context.Context, commandID int64) ([]model.ArtifactTemplate, error)
	CreateTaskArtifact(ctx context.Context, a *model.TaskArtifact) error
	ListTaskArtifacts(ctx context.Context, taskID int64) ([]model.TaskArtifact, error)
	DeleteTaskArtifact(ctx context.Context, id int64) error
}

// CredentialRepository persists credentials.
type CredentialRepository interface {
	CreateCredential(ctx context.Context, c *model.Credential) error
	GetCredential(ctx context.Context, id int64) (*model.Credential, error)
	ListCredentials(ctx context.Context, operationID int64) ([]model.Credential, error)
}

// Repository is the record store.
//
//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository
type Repository interface {
	OperatorRepository
	CommandRepository
	TransformRepository
	CallbackRepository
	TaskRepository
	FileRepository
	DerivationRepository
	CredentialRepository
}
