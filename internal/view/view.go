// Package view renders records as the JSON objects served to operators and streamed to
// sessions. Views are maps so callers can merge extra keys (envelopes, channels) into them.
package view

import (
	"time"

	"github.com/slok/opsdesk/internal/model"
)

// TimeFormat is the timestamp layout of every rendered record.
const TimeFormat = "01/02/2006 15:04:05"

// Object is a rendered record.
type Object = map[string]any

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Merge returns a new object with the keys of every object, later ones win.
func Merge(objs ...Object) Object {
	out := Object{}
	for _, o := range objs {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

func Task(t model.Task) Object {
	var command any
	if t.CommandID != nil {
		command = t.Command
	}
	commentOperator := "null"
	if t.CommentOperatorID != nil {
		commentOperator = t.CommentOperator
	}

	return Object{
		"id":               t.ID,
		"command":          command,
		"command_id":       nullable(t.CommandID),
		"params":           t.Params,
		"original_params":  t.OriginalParams,
		"status":           string(t.Status),
		"timestamp":        ts(t.Timestamp),
		"callback":         t.CallbackID,
		"operator":         t.OperatorName,
		"comment":          t.Comment,
		"comment_operator": commentOperator,
	}
}

// Operator renders an operator without its credentials.
func Operator(o model.Operator) Object {
	var lastLogin any
	if o.LastLogin != nil {
		lastLogin = ts(*o.LastLogin)
	}
	return Object{
		"id":                o.ID,
		"username":          o.Username,
		"admin":             o.Admin,
		"active":            o.Active,
		"current_operation": nullable(o.CurrentOperationID),
		"creation_time":     ts(o.CreationTime),
		"last_login":        lastLogin,
	}
}

func PayloadType(p model.PayloadType) Object {
	return Object{
		"id":             p.ID,
		"ptype":          p.Name,
		"operator":       p.OperatorID,
		"file_extension": p.FileExtension,
		"wrapper":        p.Wrapper,
		"creation_time":  ts(p.CreationTime),
	}
}

func C2Profile(c model.C2Profile) Object {
	return Object{
		"id":            c.ID,
		"name":          c.Name,
		"description":   c.Description,
		"operator":      c.OperatorID,
		"creation_time": ts(c.CreationTime),
	}
}

func PayloadTypeC2Profile(p model.PayloadTypeC2Profile) Object {
	return Object{
		"id":            p.ID,
		"payload_type":  p.PayloadTypeName,
		"c2_profile":    p.C2ProfileName,
		"creation_time": ts(p.CreationTime),
	}
}

func Response(r model.Response) Object {
	return Object{
		"id":        r.ID,
		"response":  r.Response,
		"timestamp": ts(r.Timestamp),
		"task":      r.TaskID,
	}
}

func Callback(c model.Callback) Object {
	return Object{
		"id":                 c.ID,
		"init_callback":      ts(c.InitCallback),
		"last_checkin":       ts(c.LastCheckin),
		"user":               c.User,
		"host":               c.Host,
		"pid":                c.PID,
		"ip":                 c.IP,
		"description":        c.Description,
		"operator":           c.OperatorName,
		"active":             c.Active,
		"pcallback":          nullable(c.ParentCallbackID),
		"integrity_level":    c.IntegrityLevel,
		"registered_payload": c.PayloadUUID,
		"payload_type":       c.PayloadTypeName,
		"c2_profile":         c.C2ProfileName,
		"operation":          c.OperationName,
		"encryption_type":    c.EncryptionType,
	}
}

func Payload(p model.Payload) Object {
	return Object{
		"id":            p.ID,
		"uuid":          p.UUID,
		"tag":           p.Tag,
		"operator":      p.OperatorID,
		"payload_type":  p.PayloadTypeName,
		"c2_profile":    p.C2ProfileID,
		"operation":     p.OperationID,
		"location":      p.Location,
		"deleted":       p.Deleted,
		"creation_time": ts(p.CreationTime),
	}
}

func FileMeta(f model.FileMeta) Object {
	return Object{
		"id":              f.ID,
		"total_chunks":    f.TotalChunks,
		"chunks_received": f.ChunksReceived,
		"complete":        f.Complete,
		"path":            f.Path,
		"task":            nullable(f.TaskID),
		"operator":        f.OperatorID,
		"operation":       f.OperationID,
		"timestamp":       ts(f.Timestamp),
		"deleted":         f.Deleted,
	}
}

func Credential(c model.Credential) Object {
	return Object{
		"id":          c.ID,
		"type":        c.Type,
		"task":        nullable(c.TaskID),
		"user":        c.User,
		"domain":      c.Domain,
		"credential":  c.Credential,
		"operation":   c.OperationID,
		"operator":    c.OperatorID,
		"description": c.Description,
		"timestamp":   ts(c.Timestamp),
	}
}

func Command(c model.Command) Object {
	return Object{
		"id":            c.ID,
		"cmd":           c.Cmd,
		"payload_type":  c.PayloadTypeName,
		"description":   c.Description,
		"help_cmd":      c.HelpCmd,
		"needs_admin":   c.NeedsAdmin,
		"version":       c.Version,
		"is_exit":       c.IsExit,
		"operator":      c.OperatorID,
		"creation_time": ts(c.CreationTime),
	}
}

func CommandParameter(p model.CommandParameter) Object {
	return Object{
		"id":       p.ID,
		"command":  p.CommandID,
		"name":     p.Name,
		"type":     string(p.Type),
		"hint":     p.Hint,
		"choices":  p.Choices,
		"required": p.Required,
	}
}

func CommandTransform(c model.CommandTransform) Object {
	return Object{
		"id":        c.ID,
		"command":   c.CommandID,
		"operation": c.OperationID,
		"operator":  c.OperatorID,
		"name":      c.Name,
		"order":     c.Order,
		"parameter": c.Parameter,
		"active":    c.Active,
		"timestamp": ts(c.Timestamp),
	}
}

func AttackTask(a model.AttackTask) Object {
	return Object{
		"id":          a.ID,
		"attack":      a.TNum,
		"attack_name": a.Name,
		"task":        a.TaskID,
	}
}

func TaskArtifact(a model.TaskArtifact) Object {
	return Object{
		"id":                a.ID,
		"task":              a.TaskID,
		"artifact_template": a.ArtifactTemplateID,
		"artifact_instance": a.ArtifactInstance,
		"timestamp":         ts(a.Timestamp),
	}
}
