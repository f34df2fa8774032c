package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
	"github.com/slok/opsdesk/internal/utils/file"
	"github.com/slok/opsdesk/internal/utils/params"
)

// FileUploadMarker is the params value bound to an attachment of the same key.
const FileUploadMarker = "FILEUPLOAD"

// ScreencaptureTimeFormat is the UTC layout of screencapture filenames.
const ScreencaptureTimeFormat = "2006-01-02-15:04:05"

type preprocessor func(ctx context.Context, s *Service, is *issuance) error

// preprocessors are the commands whose params need work before the transform chain.
var preprocessors = map[string]preprocessor{
	"upload":        preprocessUpload,
	"download":      preprocessDownload,
	"screencapture": preprocessScreencapture,
	"load":          preprocessLoad,
}

// stageAttachments writes every attachment bound to a params key and replaces the
// key value with the new file meta ID.
func (s *Service) stageAttachments(ctx context.Context, is *issuance) error {
	obj, err := params.Decode(is.params)
	if err != nil {
		return fmt.Errorf("params with attachments must be a JSON object: %w: %w", model.ErrFilePrep, err)
	}

	var keys []string
	for key, v := range obj {
		if v == FileUploadMarker {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	dir := conventions.OperationFilesDir(s.dataDir, is.operation.Name)
	ids := make(map[string]any, len(keys))
	for _, key := range keys {
		att, ok := is.req.Attachments[key]
		if !ok {
			return fmt.Errorf("missing attachment for %q: %w", key, model.ErrFilePrep)
		}

		name := filepath.Base(att.Filename)
		if name == "." || name == string(filepath.Separator) {
			name = key
		}
		path := filepath.Join(dir, name)
		if err := file.Write(path, att.Data); err != nil {
			return fmt.Errorf("could not write attachment %q: %w: %w", key, model.ErrFilePrep, err)
		}

		fm := model.FileMeta{
			TotalChunks:    1,
			ChunksReceived: 1,
			Complete:       true,
			Path:           path,
			OperatorID:     is.operator.ID,
			OperationID:    is.operation.ID,
		}
		if err := s.repo.CreateFileMeta(ctx, &fm); err != nil {
			return fmt.Errorf("could not register attachment %q: %w", key, err)
		}
		is.staged = append(is.staged, stagedFile{meta: fm, ownsFile: true})
		ids[key] = fm.ID
	}

	is.params, err = params.Set(is.params, keys, ids)
	if err != nil {
		return fmt.Errorf("could not encode params: %w", err)
	}
	return nil
}

type uploadParams struct {
	RemotePath string `json:"remote_path"`
	FileID     int64  `json:"file_id"`
}

// preprocessUpload points the task to a file meta of its own, duplicating the
// referenced one or using a freshly staged attachment.
func preprocessUpload(ctx context.Context, s *Service, is *issuance) error {
	raw, err := params.Decode(is.params)
	if err != nil {
		return fmt.Errorf("upload params must be a JSON object: %w: %w", model.ErrFilePrep, err)
	}
	remotePath, _ := raw["remote_path"].(string)

	var fm *model.FileMeta
	fileID, err := params.ID(raw["file_id"])
	if err != nil {
		return fmt.Errorf("invalid file_id: %w: %w", model.ErrFilePrep, err)
	}
	switch {
	case fileID > 0:
		src, err := s.repo.GetFileMeta(ctx, fileID)
		if err != nil {
			return fmt.Errorf("could not get file %d: %w: %w", fileID, model.ErrFilePrep, err)
		}
		dup := model.FileMeta{
			TotalChunks:    src.TotalChunks,
			ChunksReceived: src.ChunksReceived,
			Complete:       src.Complete,
			Path:           src.Path,
			OperatorID:     is.operator.ID,
			OperationID:    src.OperationID,
		}
		if err := s.repo.CreateFileMeta(ctx, &dup); err != nil {
			return fmt.Errorf("could not duplicate file %d: %w", fileID, err)
		}
		is.staged = append(is.staged, stagedFile{meta: dup, ownsFile: true})
		fm = &dup
	case raw["file"] != nil:
		id, err := params.ID(raw["file"])
		if err != nil {
			return fmt.Errorf("invalid file: %w: %w", model.ErrFilePrep, err)
		}
		fm, err = s.repo.GetFileMeta(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get file %d: %w: %w", id, model.ErrFilePrep, err)
		}
	default:
		return fmt.Errorf("upload requires file_id or file: %w", model.ErrFilePrep)
	}

	is.params, err = params.Encode(uploadParams{RemotePath: remotePath, FileID: fm.ID})
	if err != nil {
		return fmt.Errorf("could not encode params: %w", err)
	}
	return nil
}

// preprocessDownload strips the quotes around a quoted path.
func preprocessDownload(_ context.Context, _ *Service, is *issuance) error {
	p := is.params
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		is.params = p[1 : len(p)-1]
	}
	return nil
}

func preprocessScreencapture(_ context.Context, s *Service, is *issuance) error {
	is.params = s.timeNow().UTC().Format(ScreencaptureTimeFormat) + ".png"
	return nil
}

type loadParams struct {
	Cmds   string `json:"cmds"`
	FileID int64  `json:"file_id"`
}

// preprocessLoad builds the file with the requested commands using the payload type
// load chain and points the task to it.
func preprocessLoad(ctx context.Context, s *Service, is *issuance) error {
	cmds := is.params
	var obj struct {
		Cmds string `json:"cmds"`
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(is.params, "'", `"`)), &obj); err == nil && obj.Cmds != "" {
		cmds = obj.Cmds
	}
	is.params = cmds

	var names []string
	for _, c := range strings.Split(cmds, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		cmd, err := s.repo.GetCommandByName(ctx, c, is.callback.PayloadTypeID)
		if err != nil {
			return fmt.Errorf("could not load %q: %w: %w", c, model.ErrUnknownCommand, err)
		}
		names = append(names, c)
		is.loaded = append(is.loaded, *cmd)
	}
	if len(names) == 0 {
		return fmt.Errorf("load requires at least one command: %w", model.ErrNotValid)
	}

	out, err := s.transforms.RunLoadChain(ctx, transform.LoadChainRequest{
		PayloadTypeID:   is.callback.PayloadTypeID,
		PayloadTypeName: is.callback.PayloadTypeName,
		C2ProfileName:   is.callback.C2ProfileName,
		OperationName:   is.operation.Name,
		Commands:        names,
	})
	if err != nil {
		return err
	}

	fm := model.FileMeta{
		TotalChunks:    1,
		ChunksReceived: 1,
		Complete:       true,
		Path:           out.Path,
		OperatorID:     is.operator.ID,
		OperationID:    is.operation.ID,
	}
	if err := s.repo.CreateFileMeta(ctx, &fm); err != nil {
		return fmt.Errorf("could not register load file: %w", err)
	}
	owned := strings.HasPrefix(out.Path, conventions.OperationPayloadsDir(s.dataDir, is.operation.Name)+string(filepath.Separator))
	is.staged = append(is.staged, stagedFile{meta: fm, ownsFile: owned})

	is.params, err = params.Encode(loadParams{Cmds: cmds, FileID: fm.ID})
	if err != nil {
		return fmt.Errorf("could not encode params: %w", err)
	}
	return nil
}
