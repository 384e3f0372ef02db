package dao

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/pkg/logger"
	"github.com/haierkeys/personal-notes/pkg/storage"
	"github.com/haierkeys/personal-notes/pkg/writequeue"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultLocalKey 本地笔记集合的存储键
// DefaultLocalKey the storage key of the local collection
const DefaultLocalKey = "notes-app:notes"

// localIDRandomLength 本地 ID 随机后缀长度，取自 uuid v4 的前 12 位十六进制（均为随机位）
const localIDRandomLength = 12

// localNoteRepository 实现 domain.LocalNoteStore 接口
type localNoteRepository struct {
	storage storage.Storager
	key     string
	queue   *writequeue.Manager
	logger  *zap.Logger
}

// NewLocalNoteRepository 创建 LocalNoteStore 实例
// NewLocalNoteRepository wraps a key-value backend; a nil queue gets a private one
func NewLocalNoteRepository(s storage.Storager, key string, queue *writequeue.Manager, logger *zap.Logger) domain.LocalNoteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultLocalKey
	}
	if queue == nil {
		queue = writequeue.New(nil, logger)
	}
	return &localNoteRepository{storage: s, key: key, queue: queue, logger: logger}
}

// ReadAll 读取全部本地笔记，键不存在时返回空集合
func (r *localNoteRepository) ReadAll(ctx context.Context) ([]domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return []domain.Note{}, err
	}
	data, err := r.storage.Get(r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []domain.Note{}, nil
		}
		return []domain.Note{}, fmt.Errorf("%w: %w", domain.ErrLocalUnavailable, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []domain.Note{}, nil
	}

	var notes []domain.Note
	if err := sonic.ConfigStd.Unmarshal(data, &notes); err != nil {
		return []domain.Note{}, fmt.Errorf("%w: %w", domain.ErrLocalCorrupt, err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

// WriteAll 覆盖写入全部本地笔记
func (r *localNoteRepository) WriteAll(ctx context.Context, notes []domain.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	data, err := sonic.ConfigStd.Marshal(notes)
	if err != nil {
		return errors.Wrap(err, "encode local notes failed")
	}
	if err := r.storage.Set(r.key, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLocalUnavailable, err)
	}
	return nil
}

// Mutate reads, applies fn and rewrites the collection inside the key's write queue.
// A corrupt blob is replaced, matching what a reader sees: an empty collection.
// Mutate 在写队列中完成读取-修改-写回；损坏的数据按空集合处理并被覆盖
func (r *localNoteRepository) Mutate(ctx context.Context, fn func(notes []domain.Note) ([]domain.Note, error)) error {
	return r.queue.Execute(ctx, r.key, func(ctx context.Context) error {
		notes, err := r.ReadAll(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrLocalCorrupt) {
				return err
			}
			r.logger.Warn("local notes corrupt, rewriting",
				zap.String(logger.FieldKey, r.key),
				zap.Error(err))
		}
		next, err := fn(notes)
		if err != nil {
			return err
		}
		return r.WriteAll(ctx, next)
	})
}

func (r *localNoteRepository) Prepend(ctx context.Context, note domain.Note) error {
	return r.Mutate(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		return append([]domain.Note{note}, notes...), nil
	})
}

func (r *localNoteRepository) Upsert(ctx context.Context, note domain.Note) error {
	return r.Mutate(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		for i := range notes {
			if notes[i].ID == note.ID {
				notes[i] = note
				return notes, nil
			}
		}
		return append([]domain.Note{note}, notes...), nil
	})
}

func (r *localNoteRepository) Remove(ctx context.Context, id domain.NoteID) error {
	return r.Mutate(ctx, func(notes []domain.Note) ([]domain.Note, error) {
		kept := notes[:0]
		for _, n := range notes {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		return kept, nil
	})
}

// GenerateID local-<unix 毫秒 36 进制>-<12 位随机十六进制>
func (r *localNoteRepository) GenerateID() domain.NoteID {
	random := uuid.New()
	suffix := hex.EncodeToString(random[:])[:localIDRandomLength]
	return domain.LocalID(strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix)
}
