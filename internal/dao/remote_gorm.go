package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/model"
	"github.com/haierkeys/personal-notes/pkg/timex"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormNoteStore 通过 gorm 实现 domain.RemoteNoteStore（postgres / mysql / sqlite）
type gormNoteStore struct {
	db          *gorm.DB
	driver      string
	table       string
	autoMigrate bool
}

// NewGormNoteStore 创建 gorm 远端存储
func NewGormNoteStore(db *gorm.DB, driver, table string, autoMigrate bool) domain.RemoteNoteStore {
	if table == "" {
		table = model.TableNameNote
	}
	return &gormNoteStore{db: db, driver: driver, table: table, autoMigrate: autoMigrate}
}

// knownColumns guards against arbitrary column names reaching SQL
var knownColumns = map[string]bool{
	domain.ColumnID:        true,
	domain.ColumnTitle:     true,
	domain.ColumnContent:   true,
	domain.ColumnUpdatedAt: true,
}

func (s *gormNoteStore) Driver() string {
	return s.driver
}

// Close 关闭数据库连接
func (s *gormNoteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *gormNoteStore) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func (s *gormNoteStore) where(tx *gorm.DB, f domain.Filter) (*gorm.DB, error) {
	if !knownColumns[f.Column] {
		return nil, fmt.Errorf("unknown column %q", f.Column)
	}
	return tx.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value}), nil
}

func (s *gormNoteStore) Select(ctx context.Context, q domain.Query) ([]domain.Note, error) {
	tx := s.tx(ctx)
	if len(q.Columns) > 0 {
		for _, c := range q.Columns {
			if !knownColumns[c] {
				return nil, fmt.Errorf("unknown column %q", c)
			}
		}
		tx = tx.Select(q.Columns)
	}
	if q.Filter != nil {
		var err error
		if tx, err = s.where(tx, *q.Filter); err != nil {
			return nil, err
		}
	}
	if q.Order != nil {
		if !knownColumns[q.Order.Column] {
			return nil, fmt.Errorf("unknown column %q", q.Order.Column)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: !q.Order.Ascending})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []*model.Note
	if err := tx.Find(&rows).Error; err != nil {
		return nil, s.wrap(err, "select notes failed")
	}
	notes := make([]domain.Note, 0, len(rows))
	for _, m := range rows {
		notes = append(notes, s.toDomain(m))
	}
	return notes, nil
}

func (s *gormNoteStore) Insert(ctx context.Context, row domain.NoteRow) (domain.Note, error) {
	m := s.toModel(row)
	if err := s.tx(ctx).Create(m).Error; err != nil {
		return domain.Note{}, s.wrap(err, "insert note failed")
	}
	return s.toDomain(m), nil
}

func (s *gormNoteStore) Update(ctx context.Context, row domain.NoteRow, f domain.Filter) (domain.Note, error) {
	tx, err := s.where(s.tx(ctx), f)
	if err != nil {
		return domain.Note{}, err
	}
	m := s.toModel(row)
	res := tx.Updates(map[string]any{
		domain.ColumnTitle:     m.Title,
		domain.ColumnContent:   m.Content,
		domain.ColumnUpdatedAt: m.UpdatedAt,
	})
	if res.Error != nil {
		return domain.Note{}, s.wrap(res.Error, "update note failed")
	}

	// MySQL reports zero affected rows when nothing changed, so re-read instead of trusting RowsAffected
	// MySQL 在值未变化时返回 0 行受影响，因此重新读取
	notes, err := s.Select(ctx, domain.Query{Filter: &f, Limit: 1})
	if err != nil {
		return domain.Note{}, err
	}
	if len(notes) == 0 {
		return domain.Note{}, domain.ErrNoteNotFound
	}
	return notes[0], nil
}

func (s *gormNoteStore) Delete(ctx context.Context, f domain.Filter) error {
	tx, err := s.where(s.tx(ctx), f)
	if err != nil {
		return err
	}
	if err := tx.Delete(&model.Note{}).Error; err != nil {
		return s.wrap(err, "delete note failed")
	}
	return nil
}

// Initialize 自动迁移表结构，未开启迁移时仅检查表是否存在
func (s *gormNoteStore) Initialize(ctx context.Context) error {
	if s.autoMigrate {
		return s.wrap(model.AutoMigrate(s.tx(ctx), "Note"), "migrate notes table failed")
	}
	if !s.db.WithContext(ctx).Migrator().HasTable(s.table) {
		return errors.Wrapf(domain.ErrSchemaMissing, "relation %q does not exist", s.table)
	}
	return nil
}

func (s *gormNoteStore) wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// toDomain 将数据库模型转换为领域模型
func (s *gormNoteStore) toDomain(m *model.Note) domain.Note {
	return domain.Note{
		ID:        domain.RemoteID(m.ID),
		Title:     m.Title,
		Content:   m.Content,
		UpdatedAt: timex.Time(m.UpdatedAt.UTC()),
	}
}

// toModel 将可写字段转换为数据库模型
func (s *gormNoteStore) toModel(row domain.NoteRow) *model.Note {
	updatedAt := row.UpdatedAt.Time()
	if row.UpdatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return &model.Note{
		Title:     row.Title,
		Content:   row.Content,
		UpdatedAt: updatedAt,
	}
}
