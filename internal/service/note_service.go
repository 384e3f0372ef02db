package service

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/pkg/logger"
	"github.com/haierkeys/personal-notes/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Operation names used in logs, metrics and PersistenceError
// 日志、指标与 PersistenceError 使用的操作名称
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// requiredSchema 远端表缺失时提示的建表结构
const requiredSchema = "notes(id uuid primary key, title text, content text, updated_at timestamp)"

// NoteService 定义笔记业务服务接口
// NoteService routes every note operation to the remote store or the on-device collection
type NoteService interface {
	// ListNotes 列出全部笔记，按更新时间倒序
	ListNotes(ctx context.Context) ([]domain.Note, error)

	// CreateNote 创建笔记
	CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error)

	// UpdateNote 更新笔记，草稿 ID 视为创建
	UpdateNote(ctx context.Context, id domain.NoteID, in domain.NoteInput) (domain.Note, error)

	// DeleteNote 删除笔记
	DeleteNote(ctx context.Context, id domain.NoteID) (bool, error)

	// EnsureSchema 检查远端表结构
	EnsureSchema(ctx context.Context) bool

	// Configured 远端是否已配置
	Configured() bool

	// Probe 探测远端连通性
	Probe(ctx context.Context) bool

	// Status 远端状态
	Status() Status
}

// Status 远端状态
type Status struct {
	Configured bool   `json:"configured"`
	Driver     string `json:"driver"`
	Connected  bool   `json:"connected"`
}

// noteService 实现 NoteService 接口
type noteService struct {
	remote  domain.RemoteNoteStore
	local   domain.LocalNoteStore
	creds   CredentialsFunc
	config  *ServiceConfig
	metrics *Metrics
	logger  *zap.Logger
	sf      *singleflight.Group

	connected atomic.Bool
}

// NewNoteService 创建 NoteService 实例
// remote may be nil when no remote store was configured at startup.
func NewNoteService(remote domain.RemoteNoteStore, local domain.LocalNoteStore, creds CredentialsFunc, logger *zap.Logger, config *ServiceConfig, metrics *Metrics) NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = DefaultRemoteTimeout
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if creds == nil {
		creds = StaticCredentials("", "")
	}
	return &noteService{
		remote:  remote,
		local:   local,
		creds:   creds,
		config:  config,
		metrics: metrics,
		logger:  logger,
		sf:      &singleflight.Group{},
	}
}

// Configured is evaluated on every call so a credentials change takes effect immediately
// Configured 每次调用时重新判断
func (s *noteService) Configured() bool {
	return s.remote != nil && IsConfigured(s.creds())
}

// ListNotes never fails because of a store: a remote failure falls back to the local
// collection, a local failure yields an empty list. The error is the caller's context error.
// ListNotes 不会因存储失败而报错；远端失败回退本地，本地失败返回空列表
func (s *noteService) ListNotes(ctx context.Context) ([]domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return s.readLocal(ctx), nil
	}

	// 合并并发的远端列表请求，单个调用方取消不影响其他调用方
	v, err, _ := s.sf.Do(OpList, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RemoteTimeout)
		defer cancel()
		return s.remote.Select(rctx, domain.ListQuery())
	})
	if err != nil {
		s.fallback(OpList, domain.NoteID{}, err)
		return s.readLocal(ctx), nil
	}

	s.reachable()
	notes := slices.Clone(v.([]domain.Note))
	domain.SortByUpdatedDesc(notes)
	return notes, nil
}

func (s *noteService) CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	now := timex.Now()

	var remoteErr error
	if s.Configured() {
		rctx, cancel := s.remoteContext(ctx)
		note, err := s.remote.Insert(rctx, domain.NoteRow{Title: in.Title, Content: in.Content, UpdatedAt: now})
		cancel()
		if err == nil {
			s.reachable()
			return note, nil
		}
		s.fallback(OpCreate, domain.NoteID{}, err)
		remoteErr = err
	}

	note := domain.Note{ID: s.local.GenerateID(), Title: in.Title, Content: in.Content, UpdatedAt: now}
	if err := s.local.Prepend(ctx, note); err != nil {
		return s.localWriteFailed(OpCreate, note, remoteErr, err)
	}
	return note, nil
}

// UpdateNote routes by id: drafts are created, local ids (or an unconfigured remote) are
// upserted locally, remote ids are updated remotely. A failed remote update is saved locally
// under a new local id; the remote row keeps its old content.
// UpdateNote 按 ID 路由；远端更新失败时以新的本地 ID 保存到本地
func (s *noteService) UpdateNote(ctx context.Context, id domain.NoteID, in domain.NoteInput) (domain.Note, error) {
	if id.IsDraft() {
		return s.CreateNote(ctx, in)
	}

	now := timex.Now()
	if id.IsLocal() || !s.Configured() {
		note := domain.Note{ID: id, Title: in.Title, Content: in.Content, UpdatedAt: now}
		if err := s.local.Upsert(ctx, note); err != nil {
			return s.localWriteFailed(OpUpdate, note, nil, err)
		}
		return note, nil
	}

	rctx, cancel := s.remoteContext(ctx)
	note, err := s.remote.Update(rctx, domain.NoteRow{Title: in.Title, Content: in.Content, UpdatedAt: now}, domain.ByID(id))
	cancel()
	if err == nil {
		s.reachable()
		return note, nil
	}
	s.fallback(OpUpdate, id, err)

	note = domain.Note{ID: s.local.GenerateID(), Title: in.Title, Content: in.Content, UpdatedAt: now}
	if lerr := s.local.Prepend(ctx, note); lerr != nil {
		return s.localWriteFailed(OpUpdate, note, err, lerr)
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, id domain.NoteID) (bool, error) {
	if id.IsDraft() {
		return true, nil
	}

	var remoteErr error
	if id.IsRemote() && s.Configured() {
		rctx, cancel := s.remoteContext(ctx)
		err := s.remote.Delete(rctx, domain.ByID(id))
		cancel()
		if err == nil {
			s.reachable()
			return true, nil
		}
		s.fallback(OpDelete, id, err)
		remoteErr = err
	}

	if err := s.local.Remove(ctx, id); err != nil {
		if _, perr := s.localWriteFailed(OpDelete, domain.Note{ID: id}, remoteErr, err); perr != nil {
			return false, perr
		}
	}
	return true, nil
}

// EnsureSchema 远端已配置时初始化表结构，失败只记录日志
func (s *noteService) EnsureSchema(ctx context.Context) bool {
	if !s.Configured() {
		return false
	}
	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	err := s.remote.Initialize(rctx)
	if err == nil {
		return true
	}
	if errors.Is(err, domain.ErrSchemaMissing) {
		s.logger.Warn("remote notes table is missing, create it before use",
			zap.String(logger.FieldDriver, s.remote.Driver()),
			zap.String("schema", requiredSchema),
			zap.Error(err))
		return false
	}
	s.logger.Warn("remote schema check failed",
		zap.String(logger.FieldDriver, s.remote.Driver()),
		zap.Error(err))
	return false
}

// Probe 探测远端连通性并更新状态与指标
func (s *noteService) Probe(ctx context.Context) bool {
	ok := false
	if s.Configured() {
		rctx, cancel := s.remoteContext(ctx)
		_, err := s.remote.Select(rctx, domain.Query{Columns: []string{domain.ColumnID}, Limit: 1})
		cancel()
		ok = err == nil
		if !ok {
			s.logger.Debug("remote probe failed", zap.String(logger.FieldDriver, s.remote.Driver()), zap.Error(err))
		}
	}
	if ok {
		s.reachable()
	} else {
		s.connected.Store(false)
		s.metrics.RemoteUp.Set(0)
	}
	return ok
}

// reachable 记录一次成功的远端调用
func (s *noteService) reachable() {
	s.connected.Store(true)
	s.metrics.RemoteUp.Set(1)
}

func (s *noteService) Status() Status {
	st := Status{Configured: s.Configured(), Connected: s.connected.Load()}
	if s.remote != nil {
		st.Driver = s.remote.Driver()
	}
	if !st.Configured {
		st.Connected = false
	}
	return st
}

func (s *noteService) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.RemoteTimeout)
}

// readLocal 读取本地集合，失败时返回空列表
func (s *noteService) readLocal(ctx context.Context) []domain.Note {
	notes, err := s.local.ReadAll(ctx)
	if err != nil {
		s.metrics.LocalErrors.WithLabelValues(OpList).Inc()
		s.logger.Warn("read local notes failed",
			zap.String(logger.FieldAction, OpList),
			zap.String(logger.FieldStore, "local"),
			zap.Error(err))
		return []domain.Note{}
	}
	domain.SortByUpdatedDesc(notes)
	return notes
}

func (s *noteService) fallback(op string, id domain.NoteID, err error) {
	s.connected.Store(false)
	s.metrics.RemoteUp.Set(0)
	s.metrics.Fallbacks.WithLabelValues(op).Inc()
	s.logger.Warn("remote operation failed, falling back to local storage",
		zap.String(logger.FieldAction, op),
		zap.String(logger.FieldNoteID, id.String()),
		zap.String(logger.FieldIDKind, id.Kind().String()),
		zap.String(logger.FieldDriver, s.remote.Driver()),
		zap.Error(err))
}

// localWriteFailed 本地写入失败：默认忽略并返回笔记，严格模式下返回 PersistenceError
func (s *noteService) localWriteFailed(op string, note domain.Note, remoteErr, localErr error) (domain.Note, error) {
	s.metrics.LocalErrors.WithLabelValues(op).Inc()
	s.logger.Error("write local notes failed",
		zap.String(logger.FieldAction, op),
		zap.String(logger.FieldNoteID, note.ID.String()),
		zap.String(logger.FieldStore, "local"),
		zap.Bool("strict", s.config.StrictLocal),
		zap.Error(localErr))
	if s.config.StrictLocal {
		return domain.Note{}, &PersistenceError{Op: op, Remote: remoteErr, Local: localErr}
	}
	return note, nil
}
